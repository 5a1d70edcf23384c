// Package config loads .doxyfront.yaml.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/doxyfront/internal/discover"
	"github.com/phobologic/doxyfront/internal/graph"
)

// FileName is the config file looked up in the working directory.
const FileName = ".doxyfront.yaml"

// Config holds every setting a file may carry. Command-line flags override
// it after loading.
type Config struct {
	Jobs            int           `yaml:"jobs" validate:"gte=0,lte=1024"`
	Exclude         []string      `yaml:"exclude"`
	IgnoreFile      string        `yaml:"ignore_file"`
	ScopeSeparators []string      `yaml:"scope_separators" validate:"min=1,dive,required"`
	PathSeparator   string        `yaml:"path_separator" validate:"required"`
	MaxSlugLength   int           `yaml:"max_slug_length" validate:"gte=8,lte=255"`
	PageExtension   string        `yaml:"page_extension" validate:"omitempty,startswith=."`
	CacheDir        string        `yaml:"cache_dir"`
	MetricsFile     string        `yaml:"metrics_file"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `yaml:"log_format" validate:"oneof=text json"`
	WatchDebounce   time.Duration `yaml:"watch_debounce" validate:"gte=0"`
}

var validate = newValidator()

// newValidator reports fields by their yaml key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Default returns the built-in settings.
func Default() Config {
	g := graph.DefaultOptions()
	return Config{
		Exclude:         append([]string(nil), discover.DefaultExclude...),
		IgnoreFile:      discover.DefaultIgnoreFile,
		ScopeSeparators: g.ScopeSeparators,
		PathSeparator:   g.PathSeparator,
		MaxSlugLength:   g.MaxSlugLength,
		PageExtension:   g.PageExtension,
		LogLevel:        "info",
		LogFormat:       "text",
		WatchDebounce:   300 * time.Millisecond,
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validating config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// GraphOptions returns the naming settings.
func (c Config) GraphOptions() graph.Options {
	return graph.Options{
		ScopeSeparators: c.ScopeSeparators,
		PathSeparator:   c.PathSeparator,
		MaxSlugLength:   c.MaxSlugLength,
		PageExtension:   c.PageExtension,
	}
}

// DiscoverOptions returns the unit selection settings.
func (c Config) DiscoverOptions() discover.Options {
	return discover.Options{Exclude: c.Exclude, IgnoreFile: c.IgnoreFile}
}

// Starter renders a commented config holding the defaults.
func Starter() string {
	d := Default()
	var b strings.Builder
	fmt.Fprintf(&b, "# doxyfront configuration. Command-line flags override these values.\n\n")
	fmt.Fprintf(&b, "# Import workers; 0 uses one per CPU.\njobs: %d\n\n", d.Jobs)
	fmt.Fprintf(&b, "# Gitignore-style patterns of XML units to skip.\nexclude:\n")
	for _, e := range d.Exclude {
		fmt.Fprintf(&b, "  - %q\n", e)
	}
	fmt.Fprintf(&b, "\n# Extra patterns, read from the XML directory.\nignore_file: %q\n\n", d.IgnoreFile)
	fmt.Fprintf(&b, "scope_separators:\n")
	for _, s := range d.ScopeSeparators {
		fmt.Fprintf(&b, "  - %q\n", s)
	}
	fmt.Fprintf(&b, "path_separator: %q\n", d.PathSeparator)
	fmt.Fprintf(&b, "max_slug_length: %d\n", d.MaxSlugLength)
	fmt.Fprintf(&b, "page_extension: %q\n\n", d.PageExtension)
	fmt.Fprintf(&b, "# Directory of the import cache; empty disables it.\ncache_dir: \"\"\n")
	fmt.Fprintf(&b, "# Prometheus textfile written after each run; empty disables it.\nmetrics_file: \"\"\n\n")
	fmt.Fprintf(&b, "log_level: %s\nlog_format: %s\n", d.LogLevel, d.LogFormat)
	fmt.Fprintf(&b, "watch_debounce: %s\n", d.WatchDebounce)
	return b.String()
}
