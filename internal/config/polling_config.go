package config

import "time"

type PollingConfig interface {
	GetPollInterval() time.Duration
	GetPollDeadline() time.Duration
}

type Polling struct {
	Interval time.Duration `envconfig:"PCRS_POLL_INTERVAL" default:"5s"`
	Deadline time.Duration `envconfig:"PCRS_POLL_DEADLINE" default:"60s"`
}

var _ PollingConfig = Polling{}

func (p Polling) GetPollInterval() time.Duration {
	return p.Interval
}

func (p Polling) GetPollDeadline() time.Duration {
	return p.Deadline
}
