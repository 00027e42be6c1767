package config

import (
	"os"
	"path/filepath"
	"time"
)

type EnvVars struct {
	APIURL      string        `envconfig:"VITE_API_URL" default:"http://localhost:8000/api"`
	AppName     string        `envconfig:"PCRS_APP_NAME" default:"PCRS"`
	Env         string        `envconfig:"PCRS_ENV" default:"DEV"`
	HTTPTimeout time.Duration `envconfig:"PCRS_HTTP_TIMEOUT" default:"30s"`
	StorePath   string        `envconfig:"PCRS_STORE_PATH"`
	PageSize    int           `envconfig:"PCRS_PAGE_SIZE" default:"10"`
	LogLevel    string        `envconfig:"PCRS_LOG_LEVEL" default:"info"`
	LogFormat   string        `envconfig:"PCRS_LOG_FORMAT" default:"pretty"`
}

var _ EnvConfig = EnvVars{}

// GetAPIURL returns the REST backend base URL (e.g., "https://pcrs.example.com/api")
func (e EnvVars) GetAPIURL() string {
	return e.APIURL
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.HTTPTimeout
}

// GetStorePath returns the file holding the local session store.
// Defaults to pcrs/store.json under the user config directory.
func (e EnvVars) GetStorePath() string {
	if e.StorePath != "" {
		return e.StorePath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "pcrs", "store.json")
}

func (e EnvVars) GetPageSize() int {
	return e.PageSize
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetLogFormat() string {
	return e.LogFormat
}
