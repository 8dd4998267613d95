package config

import "time"

// ReplayerConfig is the root configuration for a replayer instance.
type ReplayerConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Database  DatabaseConfig  `yaml:"database"`
	Replay    ReplayConfig    `yaml:"replay"`
	Writer    WriterConfig    `yaml:"writer"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Health    HealthConfig    `yaml:"health"`
}

// InstanceConfig identifies this replayer.
type InstanceConfig struct {
	ID string `yaml:"id"`
	AZ string `yaml:"az"`
}

// DatabaseConfig holds the TimescaleDB connection for recorded book data.
// Checkpoints and deltas are read from it and reconstructed snapshots are
// written back to it.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ReplayConfig holds reconstruction settings.
type ReplayConfig struct {
	// Depth limits levels per side in rendered snapshots. 0 means all.
	Depth int `yaml:"depth"`

	// EmitAll selects materialize-all over final-only for one-shot replays.
	// Defaults to true; a pointer so an explicit false survives defaulting.
	EmitAll *bool `yaml:"emit_all"`
}

// WriterConfig holds batch snapshot writer settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// SchedulerConfig holds periodic reconstruction settings.
type SchedulerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// EmitAllOrDefault resolves the EmitAll pointer, defaulting to true.
func (r ReplayConfig) EmitAllOrDefault() bool {
	if r.EmitAll == nil {
		return DefaultEmitAll
	}
	return *r.EmitAll
}
