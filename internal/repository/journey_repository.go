package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/car-pooling/internal/queue"
)

// JourneyRepo appends journey events to the journey_events table.  The
// table is a history for reporting only; allocation state is never read
// back from it.
type JourneyRepo struct {
	db *sql.DB
}

// NewJourneyRepo returns a new JourneyRepo bound to the provided database.
func NewJourneyRepo(db *sql.DB) *JourneyRepo { return &JourneyRepo{db: db} }

const journeySchema = `CREATE TABLE IF NOT EXISTS journey_events (
    id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    event_type  VARCHAR(32)  NOT NULL,
    group_id    BIGINT       NOT NULL,
    people      INT          NOT NULL,
    car_id      BIGINT       NULL,
    car_seats   INT          NULL,
    fleet_size  INT          NULL,
    occurred_at DATETIME(6)  NOT NULL,
    created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_journey_events_group (group_id, occurred_at)
)`

// EnsureSchema creates the journey_events table when it does not exist.
func (r *JourneyRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journeySchema); err != nil {
		return fmt.Errorf("create journey_events: %w", err)
	}
	return nil
}

// Insert stores one event.
func (r *JourneyRepo) Insert(ctx context.Context, ev queue.JourneyEvent) error {
	const q = `INSERT INTO journey_events (event_type, group_id, people, car_id, car_seats, fleet_size, occurred_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	args, err := journeyArgs(ev)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

// journeyArgs maps an event onto the INSERT placeholders.
func journeyArgs(ev queue.JourneyEvent) ([]interface{}, error) {
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}
	at, err := time.Parse(time.RFC3339Nano, ev.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("%w: occurred_at %q: %v", ErrInvalidEvent, ev.OccurredAt, err)
	}
	var carID, carSeats, fleet interface{}
	if ev.CarID != nil {
		carID = *ev.CarID
		carSeats = ev.CarSeats
	}
	if ev.Type == queue.EventFleetReplaced {
		fleet = ev.Cars
	}
	return []interface{}{
		ev.Type, ev.GroupID, ev.People, carID, carSeats, fleet,
		at.UTC().Format("2006-01-02 15:04:05.000000"),
	}, nil
}
