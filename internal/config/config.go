// Package config loads the vectorize configuration: a TOML base file, an optional overlay picked by
// VECTORIZE_ENV, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/pkg/vectorize/remote"
)

const (
	BaseConfigFile       = "vectorize.toml"
	OverlayConfigPattern = "vectorize.%s.toml"

	EnvVectorizeEnv = "VECTORIZE_ENV"
)

// Config is the root configuration of the vectorize command.
type Config struct {
	Log    LogConfig     `toml:"log"`
	Remote remote.Config `toml:"remote"`
	Trace  TraceConfig   `toml:"trace"`
	Report ReportConfig  `toml:"report"`
}

// Env returns the VECTORIZE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvVectorizeEnv); env != "" {
		return env
	}

	return "local"
}

// Load reads the base config at path (BaseConfigFile when empty), applies the overlay found next
// to it, and finalizes all values. A missing base file is not an error when path is empty:
// defaults and environment variables then provide all configuration.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	cfg := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case explicit || !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}

	if overlay := overlayPath(path); overlay != "" {
		loaded, err := load(overlay)
		if err != nil {
			return nil, errors.Wrapf(err, "load overlay %s", overlay)
		}
		cfg.Merge(loaded)
	}

	if err := cfg.finalize(); err != nil {
		return nil, errors.Wrap(err, "finalize config")
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	c.Log.Merge(&overlay.Log)
	c.Remote.Merge(&overlay.Remote)
	c.Trace.Merge(&overlay.Trace)
	c.Report.Merge(&overlay.Report)
}

func (c *Config) finalize() error {
	if err := c.Log.Finalize(logEnv); err != nil {
		return errors.Wrap(err, "log")
	}
	if err := c.Remote.Finalize(remote.DefaultEnv); err != nil {
		return errors.Wrap(err, "remote")
	}
	if err := c.Trace.Finalize(traceEnv); err != nil {
		return errors.Wrap(err, "trace")
	}
	if err := c.Report.Finalize(reportEnv); err != nil {
		return errors.Wrap(err, "report")
	}

	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvVectorizeEnv)
	if env == "" {
		return ""
	}
	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}

	return ""
}
