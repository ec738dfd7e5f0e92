// ABOUTME: Application configuration loaded from YAML, environment, and .env
// ABOUTME: Defaults place the database under the XDG data home
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for pagen-priority.
// Environment variables override YAML values. The OpenAI key is only read
// from the environment.
type Config struct {
	DBPath string `yaml:"db_path" env:"PAGEN_DB_PATH" env-default:""` // XDG default when empty
	UserID string `yaml:"user_id" env:"PAGEN_USER_ID" env-default:"local"`

	Log    LogConfig    `yaml:"log"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Redis  RedisConfig  `yaml:"redis"`
	Web    WebConfig    `yaml:"web"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"PAGEN_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"PAGEN_LOG_FORMAT" env-default:"console"`
}

// OpenAIConfig configures the image analyzer. Enrichment is disabled when
// neither APIKey nor BaseURL is set.
type OpenAIConfig struct {
	APIKey  string        `yaml:"-" env:"OPENAI_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:""`
	Model   string        `yaml:"model" env:"PAGEN_OPENAI_MODEL" env-default:"gpt-4o-mini"`
	Timeout time.Duration `yaml:"timeout" env:"PAGEN_OPENAI_TIMEOUT" env-default:"30s"`
}

func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" || c.BaseURL != ""
}

// RedisConfig configures the enrichment hint cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"PAGEN_REDIS_ADDR" env-default:""`
	Password string        `yaml:"-" env:"PAGEN_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"PAGEN_REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"PAGEN_REDIS_TTL" env-default:"24h"`
}

type WebConfig struct {
	Port int `yaml:"port" env:"PAGEN_WEB_PORT" env-default:"8080"`
}

// DefaultPath is the config file looked up when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "crm", "config.yaml")
}

// DefaultDBPath is the database location used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "crm", "crm.db")
}

// Load reads .env from the working directory if present, then the YAML file
// at path with environment overrides. A missing file at path is not an
// error; configuration then comes from the environment alone.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}

	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	if c.UserID == "" {
		return errors.New("user_id must not be empty")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive, got %s", c.OpenAI.Timeout)
	}
	if c.OpenAI.Enabled() && c.OpenAI.Model == "" {
		return errors.New("openai.model is required when image analysis is enabled")
	}
	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be positive, got %s", c.Redis.TTL)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port out of range: %d", c.Web.Port)
	}
	return nil
}
