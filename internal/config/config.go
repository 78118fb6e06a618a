// Package config handles seoggi.toml optimizer configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "seoggi.toml"

// Config represents a seoggi.toml file.
type Config struct {
	Pipeline Pipeline `toml:"pipeline"`
	Inline   Inline   `toml:"inline"`
	DCE      DCE      `toml:"dce"`
	Log      Log      `toml:"log"`

	// Dir is the directory containing the seoggi.toml file (set at load time).
	Dir string `toml:"-"`
}

// Pipeline selects the transformation passes to run.
type Pipeline struct {
	Passes []string `toml:"passes"`
	// VerifyModified fingerprints the module around every pass and fails
	// when a pass changes it without reporting the change.
	VerifyModified bool `toml:"verify_modified"`
}

type Inline struct {
	SizeThreshold     int  `toml:"size_threshold"`
	ExceptionsEnabled bool `toml:"exceptions_enabled"`
}

type DCE struct {
	// MaxIterations bounds the fixed-point loop. 0 means unbounded.
	MaxIterations int `toml:"max_iterations"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// DefaultPasses is the pipeline used when none is configured.
var DefaultPasses = []string{"inline", "constfold", "dce"}

const defaultSizeThreshold = 32

// Defaults returns the configuration used without a seoggi.toml.
func Defaults() *Config {
	c := &Config{}
	c.applyDefaults(toml.MetaData{})
	return c
}

// Parse decodes configuration text. Keys left out keep their defaults.
func Parse(data string) (*Config, error) {
	var c Config
	meta, err := toml.Decode(data, &c)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	c.applyDefaults(meta)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults(meta toml.MetaData) {
	if len(c.Pipeline.Passes) == 0 && !meta.IsDefined("pipeline", "passes") {
		c.Pipeline.Passes = append([]string(nil), DefaultPasses...)
	}
	if !meta.IsDefined("inline", "size_threshold") {
		c.Inline.SizeThreshold = defaultSizeThreshold
	}
}

// Validate rejects values no pass can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Inline.SizeThreshold < 0 {
		errs = append(errs, fmt.Errorf("inline.size_threshold must not be negative, got %d", c.Inline.SizeThreshold))
	}
	if c.DCE.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("dce.max_iterations must not be negative, got %d", c.DCE.MaxIterations))
	}
	if c.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity))
	}
	seen := make(map[string]bool, len(c.Pipeline.Passes))
	for _, name := range c.Pipeline.Passes {
		if seen[name] {
			errs = append(errs, fmt.Errorf("pipeline.passes lists %q twice", name))
		}
		seen[name] = true
	}
	return errors.Join(errs...)
}

// Load parses a seoggi.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// LoadFile parses an explicitly named configuration file.
func LoadFile(path string) (*Config, error) {
	if filepath.Base(path) == FileName {
		return Load(filepath.Dir(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a seoggi.toml file and loads
// it. Without one, it returns Defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Defaults(), nil
		}
		dir = parent
	}
}

// LogFile returns the log file path resolved against Dir, or "" for stderr.
func (c *Config) LogFile() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) || c.Dir == "" {
		return c.Log.File
	}
	return filepath.Join(c.Dir, c.Log.File)
}
