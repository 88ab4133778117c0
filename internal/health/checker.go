// Package health runs periodic checks on the storage behind a profile.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is how often the checks run.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs its checks on an interval and keeps the latest results.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      zerolog.Logger
}

// NewChecker creates a checker. A non-positive interval uses
// DefaultInterval.
func NewChecker(log zerolog.Logger, interval time.Duration, checks ...Check) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{checks: checks, interval: interval, log: log}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check now.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{Name: check.Name, Healthy: true, CheckedAt: time.Now()}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			c.log.Warn().Str("check", check.Name).Err(err).Msg("health check failed")
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.log.Error().Str("check", check.Name).Err(rerr).Msg("recovery failed")
				}
			}
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass. It is vacuously true before
// the first run.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Constructors ─────────────────────────────────────────────────────

// Ping reports fn's error under name.
func Ping(name string, fn func() error) Check {
	return Check{
		Name:    name,
		CheckFn: func(context.Context) error { return fn() },
	}
}

// DataDir checks that dir is a directory. A missing directory is
// recreated by the recovery step.
func DataDir(dir string) Check {
	return Check{
		Name: "data_dir",
		CheckFn: func(context.Context) error {
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("check data dir: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return nil
		},
		RecoverFn: func(context.Context) error {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return os.MkdirAll(dir, 0700)
			}
			return nil
		},
	}
}

// LastSave reports the error of the most recent snapshot save.
func LastSave(lastErr func() error) Check {
	return Check{
		Name: "snapshot_save",
		CheckFn: func(context.Context) error {
			if err := lastErr(); err != nil {
				return fmt.Errorf("last snapshot save failed: %w", err)
			}
			return nil
		},
	}
}
