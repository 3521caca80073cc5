package analysis

import (
	"fmt"
	"os"
)

// Config holds model invocation settings for the Bedrock runtime.
type Config struct {
	Region       string `toml:"region"`
	ModelID      string `toml:"model_id"`
	EmbedModelID string `toml:"embed_model_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Region       string
	ModelID      string
	EmbedModelID string
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
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.ModelID != "" {
		c.ModelID = overlay.ModelID
	}
	if overlay.EmbedModelID != "" {
		c.EmbedModelID = overlay.EmbedModelID
	}
}

func (c *Config) loadDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.ModelID == "" {
		c.ModelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}
	if c.EmbedModelID == "" {
		c.EmbedModelID = "amazon.titan-embed-text-v1"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Region != "" {
		if v := os.Getenv(env.Region); v != "" {
			c.Region = v
		}
	}
	if env.ModelID != "" {
		if v := os.Getenv(env.ModelID); v != "" {
			c.ModelID = v
		}
	}
	if env.EmbedModelID != "" {
		if v := os.Getenv(env.EmbedModelID); v != "" {
			c.EmbedModelID = v
		}
	}
}

func (c *Config) validate() error {
	if c.Region == "" {
		return fmt.Errorf("analysis config: region is required")
	}
	if c.ModelID == "" {
		return fmt.Errorf("analysis config: model_id is required")
	}
	if c.EmbedModelID == "" {
		return fmt.Errorf("analysis config: embed_model_id is required")
	}
	return nil
}
