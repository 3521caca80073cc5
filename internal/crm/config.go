package crm

import (
	"fmt"
	"os"
	"time"
)

// Config holds CRM API and OAuth client settings.
type Config struct {
	APIURL         string `toml:"api_url"`
	AccountsURL    string `toml:"accounts_url"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RefreshToken   string `toml:"refresh_token"`
	RequestTimeout string `toml:"request_timeout"`
	RefreshBuffer  string `toml:"refresh_buffer"`
	RetryInterval  string `toml:"retry_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIURL         string
	AccountsURL    string
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	RequestTimeout string
	RefreshBuffer  string
	RetryInterval  string
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// RefreshBufferDuration returns RefreshBuffer as a time.Duration.
func (c *Config) RefreshBufferDuration() time.Duration {
	d, _ := time.ParseDuration(c.RefreshBuffer)
	return d
}

// RetryIntervalDuration returns RetryInterval as a time.Duration.
func (c *Config) RetryIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryInterval)
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
	if overlay.AccountsURL != "" {
		c.AccountsURL = overlay.AccountsURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.ClientSecret != "" {
		c.ClientSecret = overlay.ClientSecret
	}
	if overlay.RefreshToken != "" {
		c.RefreshToken = overlay.RefreshToken
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.RefreshBuffer != "" {
		c.RefreshBuffer = overlay.RefreshBuffer
	}
	if overlay.RetryInterval != "" {
		c.RetryInterval = overlay.RetryInterval
	}
}

func (c *Config) loadDefaults() {
	if c.APIURL == "" {
		c.APIURL = "https://www.zohoapis.com/crm/v2"
	}
	if c.AccountsURL == "" {
		c.AccountsURL = "https://accounts.zoho.com"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "30s"
	}
	if c.RefreshBuffer == "" {
		c.RefreshBuffer = "5m"
	}
	if c.RetryInterval == "" {
		c.RetryInterval = "60s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIURL != "" {
		if v := os.Getenv(env.APIURL); v != "" {
			c.APIURL = v
		}
	}
	if env.AccountsURL != "" {
		if v := os.Getenv(env.AccountsURL); v != "" {
			c.AccountsURL = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.ClientSecret != "" {
		if v := os.Getenv(env.ClientSecret); v != "" {
			c.ClientSecret = v
		}
	}
	if env.RefreshToken != "" {
		if v := os.Getenv(env.RefreshToken); v != "" {
			c.RefreshToken = v
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
	if env.RefreshBuffer != "" {
		if v := os.Getenv(env.RefreshBuffer); v != "" {
			c.RefreshBuffer = v
		}
	}
	if env.RetryInterval != "" {
		if v := os.Getenv(env.RetryInterval); v != "" {
			c.RetryInterval = v
		}
	}
}

func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("crm config: client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("crm config: client_secret is required")
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("crm config: refresh_token is required")
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("crm config: invalid request_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RefreshBuffer); err != nil {
		return fmt.Errorf("crm config: invalid refresh_buffer: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryInterval); err != nil {
		return fmt.Errorf("crm config: invalid retry_interval: %w", err)
	}
	return nil
}
