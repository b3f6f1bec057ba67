package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"irislint/internal/balance"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = "irislint.toml"

// Config mirrors irislint.toml.
type Config struct {
	Scan  ScanConfig  `toml:"scan"`
	Check CheckConfig `toml:"check"`
}

// ScanConfig holds the lexical rules.
type ScanConfig struct {
	Comment string `toml:"comment"`
	Strings string `toml:"strings"` // span | line
}

// CheckConfig holds batch settings.
type CheckConfig struct {
	Extensions []string `toml:"extensions"`
	Context    int      `toml:"context"`
	Jobs       int      `toml:"jobs"`
	Exclude    []string `toml:"exclude"`
}

// File is a loaded configuration together with what it actually set.
type File struct {
	Path   string
	Root   string
	Config Config
	meta   toml.MetaData
}

// IsDefined reports whether the file sets key, e.g. IsDefined("scan", "comment").
// A nil File defines nothing.
func (f *File) IsDefined(key ...string) bool {
	if f == nil {
		return false
	}
	return f.meta.IsDefined(key...)
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest configuration. ok is false when there
// is none.
func Discover(startDir string) (*File, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	f, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return f, true, nil
}

// Load decodes and validates the configuration at path. Unknown keys are an
// error.
func Load(path string) (*File, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Check.Context < 0 {
		return fmt.Errorf("[check].context must be >= 0, got %d", c.Check.Context)
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0, got %d", c.Check.Jobs)
	}
	for _, ext := range c.Check.Extensions {
		if strings.TrimSpace(ext) == "" {
			return errors.New("[check].extensions must not contain empty entries")
		}
	}
	if _, err := c.ScanOptions(); err != nil {
		return fmt.Errorf("[scan]: %w", err)
	}
	return nil
}

// ScanOptions converts [scan] into scanner options.
func (c *Config) ScanOptions() (balance.Options, error) {
	policy, err := balance.ParseStringPolicy(c.Scan.Strings)
	if err != nil {
		return balance.Options{}, err
	}
	opts := balance.Options{
		CommentMarker: c.Scan.Comment,
		Strings:       policy,
	}.Normalize()
	if err := opts.Validate(); err != nil {
		return balance.Options{}, err
	}
	return opts, nil
}
