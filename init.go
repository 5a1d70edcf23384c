package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/phobologic/doxyfront/internal/config"
)

// newInitCmd implements `doxyfront init`, which writes a starter config file
// holding every setting at its default.
func newInitCmd(a *app) *cobra.Command {
	var dryRun, force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter " + config.FileName,
		Long: `Write a commented config file holding the built-in defaults.

path defaults to ./` + config.FileName + `. An existing file is left alone unless
--force is given.`,
		Args: cobra.MaximumNArgs(1),
		// An existing config may be the broken one being replaced.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(_ *cobra.Command, args []string) error {
			starter := config.Starter()
			if dryRun {
				_, _ = fmt.Fprint(a.stdout, starter)
				return nil
			}

			path := config.FileName
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", path)
			}
			_, _ = fmt.Fprintf(a.stderr, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
