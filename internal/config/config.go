// Package config loads settings from defaults, an optional config file,
// MPDHARVEST_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "MPDHARVEST"

// Configuration keys.
const (
	LogLevel           = "log.level"
	LogJSON            = "log.json"
	OutputDirectory    = "output.directory"
	HTTPUserAgent      = "http.user_agent"
	HTTPTimeout        = "http.timeout"
	DownloadWorkers    = "download.workers"
	DownloadRetries    = "download.retries"
	DownloadRetryDelay = "download.retry_delay"
	ServeListen        = "serve.listen"
	ServeCacheTTL      = "serve.cache_ttl"
)

// Default holds the factory value of every key.
var Default = map[string]any{
	LogLevel:           "info",
	LogJSON:            false,
	OutputDirectory:    "harvest",
	HTTPUserAgent:      "",
	HTTPTimeout:        30 * time.Second,
	DownloadWorkers:    4,
	DownloadRetries:    3,
	DownloadRetryDelay: 100 * time.Millisecond,
	ServeListen:        ":8080",
	ServeCacheTTL:      time.Minute,
}

// EnvKeyReplacer maps configuration keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Config is the fully processed application configuration.
type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
		JSON  bool   `mapstructure:"json"`
	} `mapstructure:"log"`
	Output struct {
		Directory string `mapstructure:"directory"`
	} `mapstructure:"output"`
	HTTP struct {
		UserAgent string        `mapstructure:"user_agent"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"http"`
	Download struct {
		Workers    int           `mapstructure:"workers"`
		Retries    int           `mapstructure:"retries"`
		RetryDelay time.Duration `mapstructure:"retry_delay"`
	} `mapstructure:"download"`
	Serve struct {
		Listen   string        `mapstructure:"listen"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"serve"`
}

// NewViper returns a viper instance with defaults and environment bindings,
// reading config files from fs.
func NewViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()
	for key, value := range Default {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads the config file at path, if path is not empty, and decodes the
// merged settings of v.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Download.Workers < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", DownloadWorkers, c.Download.Workers))
	}
	if c.Download.Retries < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", DownloadRetries, c.Download.Retries))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", HTTPTimeout, c.HTTP.Timeout))
	}
	if c.Output.Directory == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", OutputDirectory))
	}
	return errors.Join(errs...)
}
