package transcripts

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds meeting transcript provider settings. An empty API key
// disables the integration.
type Config struct {
	APIURL         string `toml:"api_url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout string `toml:"request_timeout"`
	MaxMeetings    int    `toml:"max_meetings"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIURL         string
	APIKey         string
	RequestTimeout string
	MaxMeetings    string
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
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
	if overlay.APIURL != "" {
		c.APIURL = overlay.APIURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.MaxMeetings != 0 {
		c.MaxMeetings = overlay.MaxMeetings
	}
}

func (c *Config) loadDefaults() {
	if c.APIURL == "" {
		c.APIURL = "https://api.fireflies.ai/graphql"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "30s"
	}
	if c.MaxMeetings == 0 {
		c.MaxMeetings = 3
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIURL != "" {
		if v := os.Getenv(env.APIURL); v != "" {
			c.APIURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
	if env.MaxMeetings != "" {
		if v := os.Getenv(env.MaxMeetings); v != "" {
			if max, err := strconv.Atoi(v); err == nil {
				c.MaxMeetings = max
			}
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("transcripts config: invalid request_timeout: %w", err)
	}
	if c.MaxMeetings < 1 {
		return fmt.Errorf("transcripts config: max_meetings must be positive")
	}
	return nil
}
