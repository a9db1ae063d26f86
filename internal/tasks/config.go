package tasks

import (
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Config sizes the worker pool and the queue's housekeeping.
type Config struct {
	// Workers run tasks concurrently. Default: 1
	Workers int

	// ReleaseAfter returns a claimed task to the queue when its worker has
	// not finished it in time. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks are purged. Default: 1h
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config suited to a single catalog instance.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// withDefaults replaces unset values with the defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = def.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}

// ConfigFrom builds a queue Config from the TASK_* settings.
func ConfigFrom(cfg config.Tasks) Config {
	return Config{
		Workers:         cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
	}.withDefaults()
}
