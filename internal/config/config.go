// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	DataForSEO DataForSEOConfig `mapstructure:"dataforseo"`
	SEO        SEOConfig        `mapstructure:"seo"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// AuthConfig holds the shared API key checked on every request.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig controls access to the relational database.
type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxConns     int32  `mapstructure:"max_conns"`
	MinConns     int32  `mapstructure:"min_conns"`
	EnsureSchema bool   `mapstructure:"ensure_schema"`
}

// DataForSEOConfig holds credentials for the metrics provider. Credentials
// may be absent at startup; their absence surfaces at call time.
type DataForSEOConfig struct {
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
	BaseURL  string `mapstructure:"base_url"`
}

// SEOConfig governs enrichment behavior.
type SEOConfig struct {
	PrimaryDomain   string `mapstructure:"primary_domain"`
	DefaultCountry  string `mapstructure:"default_country"`
	MetricsBatchMax int    `mapstructure:"metrics_batch_max"`
	SerpBatchMax    int    `mapstructure:"serp_batch_max"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvKeys(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 60)
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("dataforseo.base_url", "https://api.dataforseo.com")
	v.SetDefault("seo.primary_domain", "hoxtonmix.com")
	v.SetDefault("seo.default_country", "UK")
	v.SetDefault("seo.metrics_batch_max", 100)
	v.SetDefault("seo.serp_batch_max", 50)
	v.SetDefault("logging.development", false)
}

// bindEnvKeys registers every config key with Viper so environment
// variables are seen by Unmarshal even when the key has no default and
// no config file sets it.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port",
		"server.timeout_seconds",
		"auth.api_key",
		"database.dsn",
		"database.max_conns",
		"database.min_conns",
		"database.ensure_schema",
		"dataforseo.login",
		"dataforseo.password",
		"dataforseo.base_url",
		"seo.primary_domain",
		"seo.default_country",
		"seo.metrics_batch_max",
		"seo.serp_batch_max",
		"logging.development",
	}
	for _, key := range keys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server.timeout_seconds must be > 0")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must be set")
	}
	if c.SEO.MetricsBatchMax <= 0 || c.SEO.SerpBatchMax <= 0 {
		return fmt.Errorf("seo batch limits must be > 0")
	}
	return nil
}
