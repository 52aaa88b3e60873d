package remote

import (
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultURL              = "http://localhost:8080/api/svg-conversion/vtrace"
	DefaultVtraceConfigCode = "VC001"
	DefaultRembgConfigCode  = "RB003"
	DefaultTimeout          = "2m"
)

// Config holds the remote conversion service parameters.
type Config struct {
	URL              string `toml:"url"`
	VtraceConfigCode string `toml:"vtrace_config_code"`
	RembgConfigCode  string `toml:"rembg_config_code"`
	Timeout          string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL              string
	VtraceConfigCode string
	RembgConfigCode  string
	Timeout          string
}

// DefaultEnv lists the VECTORIZE_REMOTE_* variables.
var DefaultEnv = &Env{
	URL:              "VECTORIZE_REMOTE_URL",
	VtraceConfigCode: "VECTORIZE_REMOTE_VTRACE_CONFIG_CODE",
	RembgConfigCode:  "VECTORIZE_REMOTE_REMBG_CONFIG_CODE",
	Timeout:          "VECTORIZE_REMOTE_TIMEOUT",
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.VtraceConfigCode != "" {
		c.VtraceConfigCode = overlay.VtraceConfigCode
	}
	if overlay.RembgConfigCode != "" {
		c.RembgConfigCode = overlay.RembgConfigCode
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// TimeoutDuration returns Timeout as a time.Duration, zero when unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)

	return d
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.VtraceConfigCode == "" {
		c.VtraceConfigCode = DefaultVtraceConfigCode
	}
	if c.RembgConfigCode == "" {
		c.RembgConfigCode = DefaultRembgConfigCode
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, o := range []struct {
		name string
		dst  *string
	}{
		{env.URL, &c.URL},
		{env.VtraceConfigCode, &c.VtraceConfigCode},
		{env.RembgConfigCode, &c.RembgConfigCode},
		{env.Timeout, &c.Timeout},
	} {
		if o.name == "" {
			continue
		}
		if v := os.Getenv(o.name); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrap(err, "invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid url %q: scheme must be http or https", c.URL)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return errors.Wrap(err, "invalid timeout")
	}
	if d < 0 {
		return errors.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}

	return nil
}
