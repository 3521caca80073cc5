package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tbdc/leadscope/internal/analysis"
	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/transcripts"
	"github.com/tbdc/leadscope/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLeadScopeEnv             = "LEADSCOPE_ENV"
	EnvLeadScopeShutdownTimeout = "LEADSCOPE_SHUTDOWN_TIMEOUT"
	EnvLeadScopeVersion         = "LEADSCOPE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LEADSCOPE_DB_HOST",
	Port:            "LEADSCOPE_DB_PORT",
	Name:            "LEADSCOPE_DB_NAME",
	User:            "LEADSCOPE_DB_USER",
	Password:        "LEADSCOPE_DB_PASSWORD",
	SSLMode:         "LEADSCOPE_DB_SSL_MODE",
	MaxOpenConns:    "LEADSCOPE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LEADSCOPE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LEADSCOPE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LEADSCOPE_DB_CONN_TIMEOUT",
}

var crmEnv = &crm.Env{
	APIURL:         "LEADSCOPE_CRM_API_URL",
	AccountsURL:    "LEADSCOPE_CRM_ACCOUNTS_URL",
	ClientID:       "LEADSCOPE_CRM_CLIENT_ID",
	ClientSecret:   "LEADSCOPE_CRM_CLIENT_SECRET",
	RefreshToken:   "LEADSCOPE_CRM_REFRESH_TOKEN",
	RequestTimeout: "LEADSCOPE_CRM_REQUEST_TIMEOUT",
	RefreshBuffer:  "LEADSCOPE_CRM_REFRESH_BUFFER",
	RetryInterval:  "LEADSCOPE_CRM_RETRY_INTERVAL",
}

var analysisEnv = &analysis.Env{
	Region:       "LEADSCOPE_BEDROCK_REGION",
	ModelID:      "LEADSCOPE_BEDROCK_MODEL_ID",
	EmbedModelID: "LEADSCOPE_BEDROCK_EMBED_MODEL_ID",
}

var transcriptsEnv = &transcripts.Env{
	APIURL:         "LEADSCOPE_FIREFLIES_API_URL",
	APIKey:         "LEADSCOPE_FIREFLIES_API_KEY",
	RequestTimeout: "LEADSCOPE_FIREFLIES_REQUEST_TIMEOUT",
	MaxMeetings:    "LEADSCOPE_FIREFLIES_MAX_MEETINGS",
}

// Config is the root configuration for the LeadScope service.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	Database        database.Config    `toml:"database"`
	CRM             crm.Config         `toml:"crm"`
	Analysis        analysis.Config    `toml:"analysis"`
	Transcripts     transcripts.Config `toml:"transcripts"`
	API             APIConfig          `toml:"api"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
}

// Env returns the LEADSCOPE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLeadScopeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.CRM.Merge(&overlay.CRM)
	c.Analysis.Merge(&overlay.Analysis)
	c.Transcripts.Merge(&overlay.Transcripts)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.CRM.Finalize(crmEnv); err != nil {
		return fmt.Errorf("crm: %w", err)
	}
	if err := c.Analysis.Finalize(analysisEnv); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.Transcripts.Finalize(transcriptsEnv); err != nil {
		return fmt.Errorf("transcripts: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLeadScopeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLeadScopeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLeadScopeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
