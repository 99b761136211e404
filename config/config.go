// Package config models the recognized construction-time options for the
// core engine (spec §6), following the corpus's BatcherConfig/Option shape:
// a plain struct of optional fields with documented defaults, constructible
// either directly or via Option functions.
package config

import "github.com/motionmpc/coreengine/internal/xlog"

// DefaultMaxBatch is MAX_BATCH's default: the maximum number of SPs folded
// into one OT batch (spec §6). Must be identical on all parties.
const DefaultMaxBatch = 1024

// Config holds the options recognized at construction, per spec §6.
type Config struct {
	// MyID is this party's 0-based index.
	MyID int

	// LoggingSeverity is the filter threshold for the logger. A zero-valued
	// Config used directly holds xlog.LevelError (the zero Level); New
	// starts from xlog.LevelInfo instead.
	LoggingSeverity xlog.Level

	// MaxBatch is MAX_BATCH, the tunable batch-size constant from spec §6.
	// New replaces a value <= 0 with DefaultMaxBatch; a Config built
	// directly keeps whatever value it is given.
	MaxBatch int
}

// Option configures a Config constructed via New.
type Option func(*Config)

// WithMyID sets the local party index.
func WithMyID(id int) Option {
	return func(c *Config) { c.MyID = id }
}

// WithLoggingSeverity sets the logger's severity threshold.
func WithLoggingSeverity(level xlog.Level) Option {
	return func(c *Config) { c.LoggingSeverity = level }
}

// WithMaxBatch sets MAX_BATCH.
func WithMaxBatch(n int) Option {
	return func(c *Config) { c.MaxBatch = n }
}

// New builds a Config from options, applying documented defaults for any
// field left unset.
func New(opts ...Option) *Config {
	c := &Config{
		LoggingSeverity: xlog.LevelInfo,
		MaxBatch:        DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = DefaultMaxBatch
	}
	return c
}
