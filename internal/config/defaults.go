package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultReplayDepth   = 0 // all levels
	DefaultEmitAll       = true
	DefaultBatchSize     = 500
	DefaultFlushInterval = 1 * time.Second
	DefaultBufferSize    = 10000
	DefaultSchedInterval = 15 * time.Minute
	DefaultConcurrency   = 8
	DefaultJobTimeout    = 2 * time.Minute
	DefaultHealthPort    = 8080
	DefaultHealthPath    = "/health"
)

func (c *ReplayerConfig) applyDefaults() {
	applyDBDefaults(&c.Database.Timescale)

	if c.Replay.EmitAll == nil {
		v := DefaultEmitAll
		c.Replay.EmitAll = &v
	}

	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.BufferSize == 0 {
		c.Writer.BufferSize = DefaultBufferSize
	}

	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = DefaultSchedInterval
	}
	if c.Scheduler.Concurrency == 0 {
		c.Scheduler.Concurrency = DefaultConcurrency
	}
	if c.Scheduler.Timeout == 0 {
		c.Scheduler.Timeout = DefaultJobTimeout
	}

	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
