// Package discover finds the Doxygen XML units in an output directory.
package discover

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreFile is read from the XML directory when present.
const DefaultIgnoreFile = ".doxyfrontignore"

// DefaultExclude skips Doxygen's compound index, which carries no
// definitions of its own.
var DefaultExclude = []string{"index.xml"}

// Unit is one XML file to import.
type Unit struct {
	Path string // Relative to the XML directory
	Abs  string
}

// Options controls which files become units.
type Options struct {
	// Exclude holds gitignore-style patterns. Nil means DefaultExclude.
	Exclude []string
	// IgnoreFile names a pattern file inside the XML directory. Empty means
	// DefaultIgnoreFile.
	IgnoreFile string
}

// Units lists the *.xml files directly inside dir, sorted by path. Hidden
// files and files matched by the ignore file or an exclude pattern are
// skipped. Doxygen writes its XML output flat, so subdirectories are not
// searched.
func Units(dir string, opts Options) ([]Unit, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving XML directory")
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Wrap(err, "reading XML directory")
	}

	gi, err := loadIgnore(abs, opts)
	if err != nil {
		return nil, err
	}

	var results []Unit
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		// Skip symlinks
		if e.Type()&os.ModeSymlink != 0 {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xml") {
			continue
		}
		if gi.MatchesPath(name) {
			continue
		}
		results = append(results, Unit{Path: name, Abs: filepath.Join(abs, name)})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

func loadIgnore(dir string, opts Options) (*ignore.GitIgnore, error) {
	lines := opts.Exclude
	if lines == nil {
		lines = DefaultExclude
	}
	lines = append([]string(nil), lines...)

	name := opts.IgnoreFile
	if name == "" {
		name = DefaultIgnoreFile
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	f, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		return ignore.CompileIgnoreLines(lines...), nil
	case err != nil:
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return ignore.CompileIgnoreLines(lines...), nil
}
