package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	CacheConfig
	PollingConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAPIURL() string
	GetAppName() string
	GetEnv() string
	GetHTTPTimeout() time.Duration
	GetStorePath() string
	GetPageSize() int
	GetLogLevel() string
	GetLogFormat() string
}

type mainConfig struct {
	EnvVars
	Cache
	Polling
	DevServer
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (Config, error) {
	var c mainConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("[config.FromEnv] %w", err)
	}
	if c.EnvVars.PageSize <= 0 {
		return nil, fmt.Errorf("[config.FromEnv] page size must be positive, got %d", c.EnvVars.PageSize)
	}
	if c.Polling.Interval <= 0 || c.Polling.Deadline < c.Polling.Interval {
		return nil, fmt.Errorf("[config.FromEnv] poll deadline %s must not be shorter than interval %s", c.Polling.Deadline, c.Polling.Interval)
	}
	return c, nil
}
