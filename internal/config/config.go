package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the catalog service.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Service ServiceConfig `mapstructure:"service"`
	Upload  UploadConfig  `mapstructure:"upload"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CacheConfig selects the cache store backend. "memory" is the
// default; "redis" keeps the same contract but survives restarts.
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type ServiceConfig struct {
	PageSize    int `mapstructure:"page_size"`
	LatestLimit int `mapstructure:"latest_limit"`
}

type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// Load reads configuration from the given file (optional) with
// CATALOG_* environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("mysql.dsn", "root:root@tcp(localhost:3306)/catalog?parseTime=true")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("service.page_size", 20)
	v.SetDefault("service.latest_limit", 10)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 8<<20)

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Service.PageSize <= 0 {
		return fmt.Errorf("service.page_size must be positive, got %d", c.Service.PageSize)
	}
	if c.Service.LatestLimit <= 0 {
		return fmt.Errorf("service.latest_limit must be positive, got %d", c.Service.LatestLimit)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}
