package scheduler

import (
	"time"
)

// Config controls scheduler timeouts and retention windows. The alert
// evaluation cadence itself comes from the hot-reloadable alerting config.
type Config struct {
	JobTimeout       time.Duration
	LockTTL          time.Duration
	SessionRetention time.Duration
	EnabledJobs      []string
}

func DefaultConfig() Config {
	return Config{
		JobTimeout:       30 * time.Second,
		LockTTL:          2 * time.Minute,
		SessionRetention: 7 * 24 * time.Hour,
	}
}

func ProvideConfig() Config {
	return DefaultConfig()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.SessionRetention <= 0 {
		c.SessionRetention = defaults.SessionRetention
	}
	return c
}
