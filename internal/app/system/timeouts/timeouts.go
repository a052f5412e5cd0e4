// Package timeouts holds the context deadlines used by handlers and workers.
//
// Pick the smallest class that fits the operation:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and filtered reads
//   - Long: writes touching several collections, blob uploads
//   - Batch: background sweeps such as reminder dispatch
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure or ConfigureFromEnv overrides them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(cur)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Batch() time.Duration  { return get(func(c Config) time.Duration { return c.Batch }) }

// Configure overrides the non-zero values in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur, cfg)
}

func merge(dst *Config, src Config) {
	if src.Ping > 0 {
		dst.Ping = src.Ping
	}
	if src.Short > 0 {
		dst.Short = src.Short
	}
	if src.Medium > 0 {
		dst.Medium = src.Medium
	}
	if src.Long > 0 {
		dst.Long = src.Long
	}
	if src.Batch > 0 {
		dst.Batch = src.Batch
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// ConfigureFromEnv reads STUDYPAL_TIMEOUT_{PING,SHORT,MEDIUM,LONG,BATCH} as Go
// durations ("500ms", "2m"). Invalid or non-positive values are skipped.
// It returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, e := range []struct {
		key string
		dst *time.Duration
	}{
		{"STUDYPAL_TIMEOUT_PING", &cfg.Ping},
		{"STUDYPAL_TIMEOUT_SHORT", &cfg.Short},
		{"STUDYPAL_TIMEOUT_MEDIUM", &cfg.Medium},
		{"STUDYPAL_TIMEOUT_LONG", &cfg.Long},
		{"STUDYPAL_TIMEOUT_BATCH", &cfg.Batch},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload file")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
