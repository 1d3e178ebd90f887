package cache

import (
	"fmt"
	"time"

	"github.com/go-kit/log"
)

const (
	// DefaultMaxSize is the capacity used by DefaultConfig.
	DefaultMaxSize = 1000
	// DefaultEntryTTL is applied when Put is called without a TTL.
	DefaultEntryTTL = time.Hour
	// DefaultCleanupInterval is the sweeper period when Config.CleanupInterval is zero.
	DefaultCleanupInterval = 10 * time.Second
	// DefaultTraceCapacity is the trace ring size used by DefaultConfig.
	DefaultTraceCapacity = 256
)

// Config controls cache capacity, expiry, and maintenance behavior.
//
//   - MaxSize == 0 is valid: the cache never holds an inserted item.
//   - DefaultTTL == 0 means entries written without a TTL never expire.
//     They are not treated as born expired.
//   - CleanupInterval == 0 selects DefaultCleanupInterval.
//   - TraceCapacity == 0 disables the operation trace.
type Config struct {
	MaxSize         int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	TraceCapacity   int

	// Logger receives listener failures and sweeper activity. Nil means no logging.
	Logger log.Logger

	// now is overridden by tests.
	now func() time.Time
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		MaxSize:         DefaultMaxSize,
		DefaultTTL:      DefaultEntryTTL,
		CleanupInterval: DefaultCleanupInterval,
		TraceCapacity:   DefaultTraceCapacity,
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxSize < 0 {
		return fmt.Errorf("max size cannot be negative: %d", c.MaxSize)
	}
	if c.DefaultTTL < 0 {
		return fmt.Errorf("default ttl cannot be negative: %s", c.DefaultTTL)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cleanup interval cannot be negative: %s", c.CleanupInterval)
	}
	if c.TraceCapacity < 0 {
		return fmt.Errorf("trace capacity cannot be negative: %d", c.TraceCapacity)
	}
	return nil
}
