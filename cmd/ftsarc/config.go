package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/meigma/ftsarc"
	"github.com/meigma/ftsarc/compress"
)

// Config holds defaults for command flags. Flags given on the command line
// override these values.
type Config struct {
	// Compressor wraps whole archives written by pack.
	// Default: lz4
	Compressor string `yaml:"compressor"`

	// FileCompressor compresses each file added by pack. Empty stores files
	// as they are.
	FileCompressor string `yaml:"file_compressor"`

	// LogLevel is one of debug, info, warn, error.
	// Default: warn
	LogLevel string `yaml:"log_level"`

	// Workers is the number of files read or written concurrently. Zero
	// uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	// SkipCompression controls which files FileCompressor leaves alone.
	SkipCompression SkipCompressionConfig `yaml:"skip_compression"`

	// Collision is what to do with duplicate names while packing: "fail"
	// or "replace".
	// Default: fail
	Collision string `yaml:"collision"`
}

// SkipCompressionConfig configures the per-file skip predicate.
type SkipCompressionConfig struct {
	// MinSize is the smallest file, in bytes, worth compressing.
	// Default: 512
	MinSize int64 `yaml:"min_size"`

	// Disabled compresses every file, regardless of size or extension.
	Disabled bool `yaml:"disabled"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Compressor: compress.LZ4Name,
		LogLevel:   "warn",
		SkipCompression: SkipCompressionConfig{
			MinSize: 512,
		},
		Collision: ftsarc.CollisionFail.String(),
	}
}

// LoadConfig reads the YAML file at path over the defaults. An empty path
// returns the defaults. Unknown keys are rejected.
func LoadConfig(fsys afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without a command.
func (c Config) Validate() error {
	factory := compress.NewFactory()
	for _, name := range []string{c.Compressor, c.FileCompressor} {
		if name == "" {
			continue
		}
		if _, ok := factory.Lookup(name); !ok {
			return fmt.Errorf("unknown compressor %q", name)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.SkipCompression.MinSize < 0 {
		return fmt.Errorf("skip_compression.min_size must be >= 0, got %d", c.SkipCompression.MinSize)
	}
	if _, err := c.CollisionPolicy(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// CollisionPolicy parses Collision.
func (c Config) CollisionPolicy() (ftsarc.CollisionPolicy, error) {
	switch c.Collision {
	case "", ftsarc.CollisionFail.String():
		return ftsarc.CollisionFail, nil
	case ftsarc.CollisionReplace.String():
		return ftsarc.CollisionReplace, nil
	default:
		return 0, fmt.Errorf("invalid collision %q, want fail or replace", c.Collision)
	}
}

// skipCompression returns the skip predicates for pack.
func (c Config) skipCompression() []ftsarc.SkipCompressionFunc {
	if c.SkipCompression.Disabled {
		return nil
	}
	return []ftsarc.SkipCompressionFunc{ftsarc.DefaultSkipCompression(c.SkipCompression.MinSize)}
}
