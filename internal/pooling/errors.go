package pooling

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Engine.  Handlers translate them into
// HTTP responses with errors.Is.
var (
	// ErrInvalidCapacity is returned when a car offered in a fleet
	// replacement has a seat count outside the configured bounds.
	ErrInvalidCapacity = errors.New("invalid amount of seats")

	// ErrDuplicateGroup is returned when a journey is registered with an
	// id the engine already knows.
	ErrDuplicateGroup = errors.New("people group already registered")

	// ErrGroupNotFound is returned when a drop-off or locate refers to a
	// group the engine does not know.
	ErrGroupNotFound = errors.New("people group not found")
)

// Error codes exposed to API clients.
const (
	CodeCarInvalidSeat             = "CarInvalidSeat"
	CodeJourneyRegistrationFailure = "JourneyRegistrationFailure"
	CodePeopleGroupNotFound        = "PeopleGroupNotFound"
)

// InvalidCapacityError names the first car that made a fleet replacement
// fail.  It unwraps to ErrInvalidCapacity.
type InvalidCapacityError struct {
	CarID int64
	Seats int
	Min   int
	Max   int
}

func (e *InvalidCapacityError) Error() string {
	return fmt.Sprintf("%s: car %d has %d seats, allowed range is [%d, %d]",
		ErrInvalidCapacity, e.CarID, e.Seats, e.Min, e.Max)
}

func (e *InvalidCapacityError) Unwrap() error { return ErrInvalidCapacity }

// GroupError ties a group id to ErrDuplicateGroup or ErrGroupNotFound.
type GroupError struct {
	GroupID int64
	Err     error
}

func (e *GroupError) Error() string { return fmt.Sprintf("%s: id %d", e.Err, e.GroupID) }

func (e *GroupError) Unwrap() error { return e.Err }

// Code returns the client facing code for an engine error, or "" when err
// did not originate in the engine.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCapacity):
		return CodeCarInvalidSeat
	case errors.Is(err, ErrDuplicateGroup):
		return CodeJourneyRegistrationFailure
	case errors.Is(err, ErrGroupNotFound):
		return CodePeopleGroupNotFound
	}
	return ""
}
