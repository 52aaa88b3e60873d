package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/internal/logging"
)

// LogConfig selects the level and the format of the command logs.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LogEnv struct {
	Level  string
	Format string
}

var logEnv = &LogEnv{
	Level:  "VECTORIZE_LOG_LEVEL",
	Format: "VECTORIZE_LOG_FORMAT",
}

func (c *LogConfig) Finalize(env *LogEnv) error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if env != nil {
		setFromEnv(env.Level, &c.Level)
		setFromEnv(env.Format, &c.Format)
	}

	if _, err := logging.ParseLevel(c.Level); err != nil {
		return err
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format != "text" && c.Format != "json" {
		return errors.Errorf("invalid format %q: must be text or json", c.Format)
	}

	return nil
}

func (c *LogConfig) Merge(overlay *LogConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

// TraceConfig tunes local tracing.
type TraceConfig struct {
	// Concurrency is the number of files converted at the same time.
	Concurrency int `toml:"concurrency"`
	// ProfilesFile replaces the built-in converter profiles.
	ProfilesFile string `toml:"profiles_file"`
	// NoFallback disables the remote conversion service.
	NoFallback bool `toml:"no_fallback"`
}

type TraceEnv struct {
	Concurrency  string
	ProfilesFile string
	NoFallback   string
}

var traceEnv = &TraceEnv{
	Concurrency:  "VECTORIZE_TRACE_CONCURRENCY",
	ProfilesFile: "VECTORIZE_TRACE_PROFILES_FILE",
	NoFallback:   "VECTORIZE_TRACE_NO_FALLBACK",
}

func (c *TraceConfig) Finalize(env *TraceEnv) error {
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if env != nil {
		if v := os.Getenv(env.Concurrency); env.Concurrency != "" && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", env.Concurrency)
			}
			c.Concurrency = n
		}
		setFromEnv(env.ProfilesFile, &c.ProfilesFile)
		if v := os.Getenv(env.NoFallback); env.NoFallback != "" && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s", env.NoFallback)
			}
			c.NoFallback = b
		}
	}

	if c.Concurrency < 1 {
		return errors.Errorf("invalid concurrency %d: must be at least 1", c.Concurrency)
	}

	return nil
}

func (c *TraceConfig) Merge(overlay *TraceConfig) {
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.ProfilesFile != "" {
		c.ProfilesFile = overlay.ProfilesFile
	}
	if overlay.NoFallback {
		c.NoFallback = true
	}
}

// ReportConfig enables the cascade report.
type ReportConfig struct {
	// DOTFile receives the cascade graph of the whole batch.
	DOTFile string `toml:"dot_file"`
	// Stats prints per stage timings once the batch is done.
	Stats bool `toml:"stats"`
}

type ReportEnv struct {
	DOTFile string
}

var reportEnv = &ReportEnv{
	DOTFile: "VECTORIZE_REPORT_DOT_FILE",
}

func (c *ReportConfig) Finalize(env *ReportEnv) error {
	if env != nil {
		setFromEnv(env.DOTFile, &c.DOTFile)
	}

	return nil
}

func (c *ReportConfig) Merge(overlay *ReportConfig) {
	if overlay.DOTFile != "" {
		c.DOTFile = overlay.DOTFile
	}
	if overlay.Stats {
		c.Stats = true
	}
}

func setFromEnv(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
