// Package config provides typed configuration for the logo pipeline,
// decoded from viper with duration-aware hooks and validated at
// startup.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Sources SourcesConfig `mapstructure:"sources"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Store   StoreConfig   `mapstructure:"store"`
	State   StateConfig   `mapstructure:"state"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OutputConfig controls the produced PNG artifacts.
type OutputConfig struct {
	Folder        string `mapstructure:"folder"`
	Size          int    `mapstructure:"size"`
	MinSourceSize int    `mapstructure:"min_source_size"`
	// MaxUpscale caps the resize ratio for tiny sources. Zero keeps
	// the default unlimited-upscaling policy.
	MaxUpscale float64 `mapstructure:"max_upscale"`
}

// HTTPConfig controls the shared fetch client.
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// SourcesConfig configures the network logo sources.
type SourcesConfig struct {
	Clearbit ClearbitConfig `mapstructure:"clearbit"`
	Favicon  FaviconConfig  `mapstructure:"favicon"`
}

// ClearbitConfig configures the primary logo API.
type ClearbitConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// RateLimit is calls per 60-second window, budgeted per worker.
	RateLimit int `mapstructure:"rate_limit"`
}

// FaviconConfig configures the favicon providers.
type FaviconConfig struct {
	DuckDuckGoURL string `mapstructure:"duckduckgo_url"`
	GoogleURL     string `mapstructure:"google_url"`
	RateLimit     int    `mapstructure:"rate_limit"`
}

// BatchConfig controls batching and worker parallelism.
type BatchConfig struct {
	Size    int `mapstructure:"size"`
	Workers int `mapstructure:"workers"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// StateConfig locates the resumable run state files.
type StateConfig struct {
	ProgressFile      string `mapstructure:"progress_file"`
	FailedDomainsFile string `mapstructure:"failed_domains_file"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level.
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// SetDefaults registers the default configuration values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.folder", "logos")
	v.SetDefault("output.size", 256)
	v.SetDefault("output.min_source_size", 24)
	v.SetDefault("output.max_upscale", 0)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.retry_delay", "1s")
	v.SetDefault("http.user_agent", "logolens/1.0")
	v.SetDefault("sources.clearbit.base_url", "https://logo.clearbit.com")
	v.SetDefault("sources.clearbit.rate_limit", 60)
	v.SetDefault("sources.favicon.duckduckgo_url", "https://icons.duckduckgo.com/ip3")
	v.SetDefault("sources.favicon.google_url", "https://www.google.com/s2/favicons")
	v.SetDefault("sources.favicon.rate_limit", 120)
	v.SetDefault("batch.size", 300)
	v.SetDefault("batch.workers", 4)
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "logolens.db")
	v.SetDefault("state.progress_file", "progress.json")
	v.SetDefault("state.failed_domains_file", "failed_domains.json")
	v.SetDefault("logging.level", "info")
}

// Load decodes the viper state into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a correct run.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("configuration is required")
	}
	if c.Output.Folder == "" {
		return errors.New("output.folder is required")
	}
	if c.Output.Size <= 0 {
		return fmt.Errorf("output.size must be positive, got %d", c.Output.Size)
	}
	if c.Output.MinSourceSize <= 0 {
		return fmt.Errorf("output.min_source_size must be positive, got %d", c.Output.MinSourceSize)
	}
	if c.Output.MaxUpscale < 0 {
		return fmt.Errorf("output.max_upscale must not be negative, got %g", c.Output.MaxUpscale)
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative, got %d", c.HTTP.MaxRetries)
	}
	if c.Batch.Size <= 0 {
		return fmt.Errorf("batch.size must be positive, got %d", c.Batch.Size)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	if c.Sources.Clearbit.RateLimit < 0 {
		return fmt.Errorf("sources.clearbit.rate_limit must not be negative, got %d", c.Sources.Clearbit.RateLimit)
	}
	if c.Sources.Favicon.RateLimit < 0 {
		return fmt.Errorf("sources.favicon.rate_limit must not be negative, got %d", c.Sources.Favicon.RateLimit)
	}
	return nil
}
