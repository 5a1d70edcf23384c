// doxyfront turns a Doxygen XML export into a resolved symbol graph and
// renders it as HTML, a symbol table or a directory dependency graph.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/phobologic/doxyfront/internal/config"
	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/discover"
	"github.com/phobologic/doxyfront/internal/load"
	"github.com/phobologic/doxyfront/internal/logging"
	"github.com/phobologic/doxyfront/internal/metrics"
	"github.com/phobologic/doxyfront/internal/unitcache"
)

var version = "dev"

var tracer = otel.Tracer("doxyfront")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(&app{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// globalFlags holds the persistent flags. They override the config file only
// when given.
type globalFlags struct {
	config      string
	jobs        int
	exclude     []string
	cacheDir    string
	metricsFile string
	logLevel    string
	logFormat   string
}

// app is the state shared by every command of one invocation.
type app struct {
	stdout, stderr io.Writer
	flags          globalFlags
	stats          bool

	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "doxyfront [build] <xml-dir> <out-dir>",
		Short: "Render a Doxygen XML export as a cross-linked HTML reference",
		Long: `doxyfront loads every XML unit of a Doxygen export, resolves the references
between them into one symbol graph and writes a page per documented entity.

With two arguments and no command it runs build.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.configure(cmd) },
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return errors.Errorf("expected <xml-dir> <out-dir>, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.build(cmd.Context(), args[0], args[1])
		},
	}
	root.SetVersionTemplate("doxyfront {{.Version}}\n")
	root.Flags().BoolVar(&a.stats, "stats", false, "print load statistics as JSON to stdout")

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "config file (default ./"+config.FileName+" when present)")
	pf.IntVarP(&a.flags.jobs, "jobs", "j", 0, "parallel workers; 0 uses one per CPU")
	pf.StringSliceVar(&a.flags.exclude, "exclude", nil, "gitignore-style patterns of XML units to skip (replaces the configured list)")
	pf.StringVar(&a.flags.cacheDir, "cache-dir", "", "import cache directory")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "text or json")

	root.AddCommand(
		newBuildCmd(a),
		newSymbolsCmd(a),
		newDepgraphCmd(a),
		newWatchCmd(a),
		newInitCmd(a),
	)
	return root
}

// configure loads the config file, applies flag overrides and builds the
// logger and metrics of this run.
func (a *app) configure(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if a.flags.config != "" {
		cfg, err = config.Load(a.flags.config)
	} else {
		cfg, err = config.LoadOptional(config.FileName)
	}
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("jobs") {
		cfg.Jobs = a.flags.jobs
	}
	if f.Changed("exclude") {
		cfg.Exclude = a.flags.exclude
	}
	if f.Changed("cache-dir") {
		cfg.CacheDir = a.flags.cacheDir
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = a.flags.metricsFile
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.With("run_id", uuid.NewString())
	a.metrics = metrics.New()
	return nil
}

// openCache returns nil when no cache directory is configured.
func (a *app) openCache() (*unitcache.Cache, error) {
	if a.cfg.CacheDir == "" {
		return nil, nil
	}
	return unitcache.Open(unitcache.Config{Path: a.cfg.CacheDir, Logger: a.log})
}

func (a *app) closeCache(c *unitcache.Cache) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		a.log.Warn("closing cache", "error", err)
	}
}

// load discovers the units of xmlDir, builds the graph and logs what the load
// reported.
func (a *app) load(ctx context.Context, xmlDir string, cache *unitcache.Cache) (*load.Result, error) {
	units, err := discover.Units(xmlDir, a.cfg.DiscoverOptions())
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, errors.Errorf("no XML units found in %s", xmlDir)
	}

	res, err := load.Load(ctx, units, load.Options{
		Jobs:    a.cfg.Jobs,
		Graph:   a.cfg.GraphOptions(),
		Cache:   cache,
		Metrics: a.metrics,
		Logger:  a.log,
	})
	if err != nil {
		return nil, err
	}

	for _, d := range res.Diagnostics {
		level := slog.LevelWarn
		if d.Severity == diag.Note {
			level = slog.LevelDebug
		}
		a.log.Log(ctx, level, d.Message, "unit", d.Unit, "kind", d.Kind.String())
	}
	s := res.Stats
	a.log.Info("loaded symbol graph",
		"units", s.Units,
		"ok", s.UnitsOK,
		"failed", s.UnitsFailed,
		"cached", s.UnitsCached,
		"definitions", s.Definitions,
		"unresolved", s.Unresolved,
	)
	return res, nil
}

func (a *app) writeMetrics() error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	return a.metrics.WriteTextfile(a.cfg.MetricsFile)
}
