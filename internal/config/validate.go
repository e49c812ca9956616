package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be >= 1 (got %d)", c.Database.MaxConns)
	}
	if c.Import.Concurrency < 1 {
		return fmt.Errorf("import.concurrency must be >= 1 (got %d)", c.Import.Concurrency)
	}
	// One multi-row INSERT needs at least one full row of binds; the widest
	// row (record) carries 5 parameters.
	if c.Import.MaxBoundParams < 8 {
		return fmt.Errorf("import.max_bound_params must be >= 8 (got %d)", c.Import.MaxBoundParams)
	}
	if c.Import.EventBuffer < 1 {
		return fmt.Errorf("import.event_buffer must be >= 1 (got %d)", c.Import.EventBuffer)
	}
	if c.Events.SubscriberBuffer < 1 {
		return fmt.Errorf("events.subscriber_buffer must be >= 1 (got %d)", c.Events.SubscriberBuffer)
	}
	return nil
}
