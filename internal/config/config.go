// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Harvest HarvestConfig `mapstructure:"harvest"`
	DB      DBConfig      `mapstructure:"db"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SiteConfig names the remote site and its endpoint templates. The templates
// use printf-style verbs filled in by the API client.
type SiteConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	AllPostsURL  string `mapstructure:"all_posts_url"`
	PostBySlug   string `mapstructure:"post_by_slug_url"`
	AuthorByID   string `mapstructure:"author_by_id_url"`
	CategoryByID string `mapstructure:"category_by_id_url"`
	TagByID      string `mapstructure:"tag_by_id_url"`
	SearchURL    string `mapstructure:"search_url"`
}

// HTTPConfig configures HTTP client retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
	UserAgent        string `mapstructure:"user_agent"`
}

// HarvestConfig governs the ingestion loops.
type HarvestConfig struct {
	PageDelaySeconds int `mapstructure:"page_delay_seconds"`
	SearchPageCount  int `mapstructure:"search_page_count"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMinutes int    `mapstructure:"max_conn_lifetime_minutes"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the optional Prometheus endpoint. When Listen is
// empty no listener is started.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRESSHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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
	v.SetDefault("site.base_url", "https://techcrunch.com")
	v.SetDefault("site.all_posts_url", "%s/wp-json/wp/v2/posts?page=%d")
	v.SetDefault("site.post_by_slug_url", "%s/wp-json/wp/v2/posts?slug=%s")
	v.SetDefault("site.author_by_id_url", "%s/wp-json/tc/v1/users/%d")
	v.SetDefault("site.category_by_id_url", "%s/wp-json/wp/v2/categories/%d")
	v.SetDefault("site.tag_by_id_url", "%s/wp-json/wp/v2/tags/%d")
	v.SetDefault("site.search_url", "%s/search?query=%s&page=%d")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 500)
	v.SetDefault("http.backoff_max_ms", 8000)
	v.SetDefault("http.user_agent", "pressharvest/1.0 (+https://github.com/newsroomlab/pressharvest)")
	v.SetDefault("harvest.page_delay_seconds", 60)
	v.SetDefault("harvest.search_page_count", 5)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.max_conn_lifetime_minutes", 30)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.BackoffInitialMs <= 0 {
		return fmt.Errorf("http.backoff_initial_ms must be > 0")
	}
	if c.Harvest.SearchPageCount <= 0 {
		return fmt.Errorf("harvest.search_page_count must be > 0")
	}
	if c.Harvest.PageDelaySeconds < 0 {
		return fmt.Errorf("harvest.page_delay_seconds must be >= 0")
	}
	return nil
}

// Timeout converts the HTTP timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffInitial returns the base retry delay.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

// BackoffMax returns the retry delay ceiling.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}

// PageDelay returns the cooperative pause between page fetches.
func (c Config) PageDelay() time.Duration {
	return time.Duration(c.Harvest.PageDelaySeconds) * time.Second
}
