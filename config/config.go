package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/treeaudit/report"
)

// DefaultFileName is looked up in the working directory
// when no explicit path is given. Unlike an explicit path it
// may be absent.
const DefaultFileName = ".treeaudit.yaml"

// Config holds user settings. The zero value is valid.
type Config struct {
	// Exclude lists regular expressions matched against
	// file base names.
	Exclude []string `yaml:"exclude"`

	// ExcludeDirs lists regular expressions matched
	// against slash paths of directories relative to the
	// scan root.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Format is the default report format.
	Format string `yaml:"format"`

	// Color enables styled text output. Nil means on.
	Color *bool `yaml:"color"`

	// Sort orders report listings lexically.
	Sort bool `yaml:"sort"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{Format: string(report.FormatText)}
}

// Load reads the YAML file at path, which must exist.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	const errCtx = "loading config"

	raw, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg, err := parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but yields Default when
// the file does not exist.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return Load(path)
}

func parse(raw []byte) (Config, error) {
	cfg := Default()

	if err := yaml.UnmarshalWithOptions(
		raw, &cfg, yaml.DisallowUnknownField(),
	); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that every pattern compiles and the
// format is known.
func (c Config) Validate() error {
	for _, group := range [][]string{c.Exclude, c.ExcludeDirs} {
		for _, pat := range group {
			if _, err := regexp.Compile(pat); err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pat, err)
			}
		}
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}

	return nil
}

// ColorEnabled resolves the Color setting.
func (c Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}
