// Package repository stores journey events in MySQL.
package repository

import (
	"fmt"

	"github.com/iliyamo/car-pooling/internal/queue"
)

// ErrInvalidEvent is returned when an event cannot be mapped onto a
// journey_events row, for instance because its timestamp does not parse.
// It wraps queue.ErrMalformedEvent so the consumer drops such messages
// instead of requeueing them.
var ErrInvalidEvent = fmt.Errorf("invalid journey event: %w", queue.ErrMalformedEvent)
