package config

import (
	"fmt"
	"time"
)

type DevServerConfig interface {
	GetDevServerPort() string
	GetDevServerSecret() string
	GetDevServerJobDelay() time.Duration
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAdminUsername() string
	GetAdminPassword() string
}

type DevServer struct {
	Port               string        `envconfig:"PCRS_DEVSERVER_PORT" default:"8000"`
	Secret             string        `envconfig:"PCRS_DEVSERVER_SECRET" default:"pcrs-dev-secret"`
	JobDelay           time.Duration `envconfig:"PCRS_DEVSERVER_JOB_DELAY" default:"8s"`
	AccessTokenExpiry  time.Duration `envconfig:"PCRS_ACCESS_TOKEN_EXPIRY" default:"15m"`
	RefreshTokenExpiry time.Duration `envconfig:"PCRS_REFRESH_TOKEN_EXPIRY" default:"168h"`
	AdminUsername      string        `envconfig:"PCRS_DEVSERVER_ADMIN_USERNAME" default:"admin"`
	AdminPassword      string        `envconfig:"PCRS_DEVSERVER_ADMIN_PASSWORD"`
}

var _ DevServerConfig = DevServer{}

func (d DevServer) GetDevServerPort() string {
	port := d.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (d DevServer) GetDevServerSecret() string {
	return d.Secret
}

// GetDevServerJobDelay is how long the dev server takes to "process" a bulk upload.
func (d DevServer) GetDevServerJobDelay() time.Duration {
	return d.JobDelay
}

func (d DevServer) GetAccessTokenExpiry() time.Duration {
	return d.AccessTokenExpiry
}

func (d DevServer) GetRefreshTokenExpiry() time.Duration {
	return d.RefreshTokenExpiry
}

func (d DevServer) GetAdminUsername() string {
	return d.AdminUsername
}

// GetAdminPassword is empty unless set; the dev server then generates one.
func (d DevServer) GetAdminPassword() string {
	return d.AdminPassword
}
