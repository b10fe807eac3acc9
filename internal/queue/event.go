// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Journey event types.
const (
	EventFleetReplaced     = "fleet_replaced"
	EventJourneyRegistered = "journey_registered"
	EventJourneySeated     = "journey_seated"
	EventJourneyDropped    = "journey_dropped"
)

// JourneyEvent is published after every allocation change.  It carries
// enough information for downstream consumers to log or analyse journeys
// without querying the service.  CarID is nil when no car is involved,
// e.g. a group that registered and had to wait.
type JourneyEvent struct {
	Type       string `json:"type"`
	GroupID    int64  `json:"group_id"`
	People     int    `json:"people,omitempty"`
	CarID      *int64 `json:"car_id,omitempty"`
	CarSeats   int    `json:"car_seats,omitempty"`
	Cars       int    `json:"cars,omitempty"` // fleet size, fleet_replaced only
	OccurredAt string `json:"occurred_at"`
}

// Timestamp formats t the way OccurredAt expects it.
func Timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
