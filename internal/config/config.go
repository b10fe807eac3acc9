package config // package config loads application configuration from environment variables

import (
	"fmt"
	"strings"
)

// Config holds the runtime settings of the pooling service.  Every field
// maps to an environment variable and falls back to a default when the
// variable is unset, so the service starts with no configuration at all.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	MinSeats      int    // smallest seat count accepted for a car
	MaxSeats      int    // largest seat count accepted for a car
	BodyLimit     string // maximum request body size, echo notation (e.g. "50M")
	AuditSchedule string // cron spec for the periodic allocation audit
	MaxHeapMB     int    // heap size above which /status reports failure; 0 disables the check
}

// Load reads the service configuration from the environment.
func Load() Config {
	return Config{
		Env:           envStr("APP_ENV", envStr("ENV", "dev")),
		Port:          envStr("APP_PORT", envStr("PORT", "3000")),
		MinSeats:      envInt("MIN_SEATS_PER_CAR", 4),
		MaxSeats:      envInt("MAX_SEATS_PER_CAR", 6),
		BodyLimit:     envStr("BODY_LIMIT", "50M"),
		AuditSchedule: envStr("AUDIT_SCHEDULE", "@every 1m"),
		MaxHeapMB:     envInt("STATUS_MAX_HEAP_MB", 250),
	}
}

// Validate reports settings the service cannot run with.
func (c Config) Validate() error {
	if c.MinSeats < 1 {
		return fmt.Errorf("MIN_SEATS_PER_CAR must be at least 1, got %d", c.MinSeats)
	}
	if c.MaxSeats < c.MinSeats {
		return fmt.Errorf("MAX_SEATS_PER_CAR (%d) is lower than MIN_SEATS_PER_CAR (%d)", c.MaxSeats, c.MinSeats)
	}
	if c.MaxHeapMB < 0 {
		return fmt.Errorf("STATUS_MAX_HEAP_MB must not be negative, got %d", c.MaxHeapMB)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=prod.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}
