package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the checklist delivery service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WebhookConfig holds inbound event authentication settings
type WebhookConfig struct {
	SigningSecret string        `mapstructure:"signing_secret"`
	Tolerance     time.Duration `mapstructure:"tolerance"`
}

// DatabaseConfig holds record store settings
type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	Table   string `mapstructure:"table"`
	Migrate bool   `mapstructure:"migrate"`
}

// StorageConfig holds artifact store settings
type StorageConfig struct {
	URL        string        `mapstructure:"url"`
	ServiceKey string        `mapstructure:"service_key"`
	Bucket     string        `mapstructure:"bucket"`
	SignTTL    time.Duration `mapstructure:"sign_ttl"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MailerConfig holds notification transport settings
type MailerConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	FromName    string        `mapstructure:"from_name"`
	FromAddress string        `mapstructure:"from_address"`
	Subject     string        `mapstructure:"subject"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds event dedup cache settings
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	Enabled  bool          `mapstructure:"enabled"`
	DedupTTL time.Duration `mapstructure:"dedup_ttl"`
}

// Load reads configuration from an optional file and environment variables.
// Environment variables use the DELIVERY_ prefix with underscores for
// nesting, e.g. DELIVERY_WEBHOOK_SIGNING_SECRET.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("webhook.signing_secret", "")
	v.SetDefault("webhook.tolerance", "5m")

	v.SetDefault("database.url", "")
	v.SetDefault("database.table", "leads")
	v.SetDefault("database.migrate", false)

	v.SetDefault("storage.url", "")
	v.SetDefault("storage.service_key", "")
	v.SetDefault("storage.bucket", "checklists")
	v.SetDefault("storage.sign_ttl", "1h")
	v.SetDefault("storage.timeout", "30s")

	v.SetDefault("mailer.endpoint", "https://api.resend.com")
	v.SetDefault("mailer.api_key", "")
	v.SetDefault("mailer.from_name", "ImmigrAI")
	v.SetDefault("mailer.from_address", "")
	v.SetDefault("mailer.subject", "Your ImmigrAI USCIS Checklist")
	v.SetDefault("mailer.timeout", "20s")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.dedup_ttl", "24h")

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config
	v.SetEnvPrefix("DELIVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate returns the list of required settings that are absent. An empty
// list means the service may process events.
func (c *Config) Validate() []string {
	var missing []string
	if c.Webhook.SigningSecret == "" {
		missing = append(missing, "webhook.signing_secret")
	}
	if c.Database.URL == "" {
		missing = append(missing, "database.url")
	}
	if c.Database.Table == "" {
		missing = append(missing, "database.table")
	}
	if c.Storage.URL == "" {
		missing = append(missing, "storage.url")
	}
	if c.Storage.ServiceKey == "" {
		missing = append(missing, "storage.service_key")
	}
	if c.Storage.Bucket == "" {
		missing = append(missing, "storage.bucket")
	}
	if c.Mailer.APIKey == "" {
		missing = append(missing, "mailer.api_key")
	}
	if c.Mailer.FromAddress == "" {
		missing = append(missing, "mailer.from_address")
	}
	return missing
}
