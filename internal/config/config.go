package config

import "time"

// Config is the root engine configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds SQLite connection settings. MaxConns caps the
// connection pool and thereby the maximum number of concurrent reads.
type DatabaseConfig struct {
	Path        string        `yaml:"path"         env:"DATABASE_PATH"         env-default:"./jiten.db"`
	MaxConns    int           `yaml:"max_conns"    env:"DATABASE_MAX_CONNS"    env-default:"8"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"DATABASE_BUSY_TIMEOUT" env-default:"5s"`
}

// ImportConfig holds archive-import settings.
type ImportConfig struct {
	// Concurrency bounds the number of imports running at once. Inserts are
	// additionally serialized by an exclusive lock regardless of this value.
	Concurrency int `yaml:"concurrency" env:"IMPORT_CONCURRENCY" env-default:"4"`

	// MaxBoundParams is the bound-parameter budget of a single INSERT
	// statement; a pending batch is flushed before the running count would
	// exceed it. SQLite's compiled-in default limit is 999.
	MaxBoundParams int `yaml:"max_bound_params" env:"IMPORT_MAX_BOUND_PARAMS" env-default:"999"`

	// EventBuffer is the capacity of a single import's progress channel.
	// A full channel applies backpressure to the import.
	EventBuffer int `yaml:"event_buffer" env:"IMPORT_EVENT_BUFFER" env-default:"16"`
}

// EventsConfig holds engine event-bus settings.
type EventsConfig struct {
	// SubscriberBuffer is the per-subscriber channel capacity. A subscriber
	// that falls further behind than this loses events rather than blocking
	// mutations.
	SubscriberBuffer int `yaml:"subscriber_buffer" env:"EVENTS_SUBSCRIBER_BUFFER" env-default:"64"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
