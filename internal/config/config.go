// Package config provides Viper-based configuration for the blog server and
// the static exporter.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MinCookieSecretLength is the shortest accepted preview cookie secret.
const MinCookieSecretLength = 32

// Content backends.
const (
	BackendPrismic = "prismic"
	BackendFS      = "fs"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

// Config represents the complete configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Content ContentConfig `mapstructure:"content"`
	Preview PreviewConfig `mapstructure:"preview"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Locale  LocaleConfig  `mapstructure:"locale"`
	Log     LogConfig     `mapstructure:"log"`
	Build   BuildConfig   `mapstructure:"build"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// LoadMoreRate is the per-IP request budget for load-more and preview entry per minute.
	LoadMoreRate int `mapstructure:"load_more_rate"`
	SessionSize  int `mapstructure:"session_size"`
}

// ContentConfig selects and configures the content source
type ContentConfig struct {
	Backend           string        `mapstructure:"backend"`
	APIURL            string        `mapstructure:"api_url"`
	AccessToken       string        `mapstructure:"access_token"`
	DocumentType      string        `mapstructure:"document_type"`
	Dir               string        `mapstructure:"dir"`
	PreviewToken      string        `mapstructure:"preview_token"`
	PageSize          int           `mapstructure:"page_size"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RefTTL            time.Duration `mapstructure:"ref_ttl"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	SanitizeHTML      bool          `mapstructure:"sanitize_html"`
	Watch             bool          `mapstructure:"watch"`
}

// PreviewConfig configures the signed preview marker cookie
type PreviewConfig struct {
	CookieSecret string        `mapstructure:"cookie_secret"`
	CookieName   string        `mapstructure:"cookie_name"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	Secure       bool          `mapstructure:"secure"`
}

// CacheConfig configures the rendered page cache
type CacheConfig struct {
	Backend     string        `mapstructure:"backend"`
	TTL         time.Duration `mapstructure:"ttl"`
	Retention   time.Duration `mapstructure:"retention"`
	Size        int           `mapstructure:"size"`
	DatabaseURL string        `mapstructure:"database_url"`
	RedisURL    string        `mapstructure:"redis_url"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// LocaleConfig controls date rendering
type LocaleConfig struct {
	Tag      string `mapstructure:"tag"`
	Timezone string `mapstructure:"timezone"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BuildConfig configures the static exporter
type BuildConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// Load reads configuration from defaults, an optional file and
// SPACETRAVELING_* environment variables, in increasing precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("spacetraveling")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/spacetraveling")
	}

	v.SetEnvPrefix("SPACETRAVELING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.load_more_rate", 60)
	v.SetDefault("server.session_size", 10000)

	v.SetDefault("content.backend", BackendPrismic)
	v.SetDefault("content.api_url", "")
	v.SetDefault("content.access_token", "")
	v.SetDefault("content.document_type", "post")
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.preview_token", "")
	v.SetDefault("content.page_size", 2)
	v.SetDefault("content.timeout", 10*time.Second)
	v.SetDefault("content.ref_ttl", 30*time.Second)
	v.SetDefault("content.requests_per_second", 10.0)
	v.SetDefault("content.burst", 20)
	v.SetDefault("content.sanitize_html", true)
	v.SetDefault("content.watch", false)

	v.SetDefault("preview.cookie_secret", "")
	v.SetDefault("preview.cookie_name", "spacetraveling_preview")
	v.SetDefault("preview.max_age", time.Hour)
	v.SetDefault("preview.secure", false)

	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", 30*time.Minute)
	v.SetDefault("cache.retention", 24*time.Hour)
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.key_prefix", "spacetraveling:page:")

	v.SetDefault("locale.tag", "pt-BR")
	v.SetDefault("locale.timezone", "UTC")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("build.output_dir", "out")
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	switch c.Content.Backend {
	case BackendPrismic:
		if c.Content.APIURL == "" {
			return errors.New("content.api_url is required for the prismic backend")
		}
		u, err := url.Parse(c.Content.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("content.api_url is not an http(s) url: %q", c.Content.APIURL)
		}
	case BackendFS:
		if c.Content.Dir == "" {
			return errors.New("content.dir is required for the fs backend")
		}
	default:
		return fmt.Errorf("invalid content.backend: %s (must be %s or %s)", c.Content.Backend, BackendPrismic, BackendFS)
	}

	if c.Content.PageSize <= 0 {
		return fmt.Errorf("content.page_size must be positive, got %d", c.Content.PageSize)
	}

	if c.Preview.CookieSecret != "" && len(c.Preview.CookieSecret) < MinCookieSecretLength {
		return fmt.Errorf("preview.cookie_secret must be at least %d bytes", MinCookieSecretLength)
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			return errors.New("cache.database_url is required for the postgres cache")
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis cache")
		}
	default:
		return fmt.Errorf("invalid cache.backend: %s (must be memory, postgres, or redis)", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format: %s (must be text or json)", c.Log.Format)
	}

	return nil
}

// PreviewEnabled reports whether preview mode can be entered at all.
func (c *Config) PreviewEnabled() bool {
	return c.Preview.CookieSecret != ""
}
