package model

// Car describes a vehicle available for pooling.  Cars are supplied in
// bulk by fleet replacement and live until the next replacement.
//
// Fields:
//  ID    – identifier supplied by the caller; unique within a fleet.
//  Seats – total seat capacity of the car.
type Car struct {
	ID    int64 `json:"id"`    // cars[].id
	Seats int   `json:"seats"` // cars[].seats
}

// Group is a set of people who want to travel together.  A group is
// never split across cars.
//
// Fields:
//  ID     – journey identifier supplied by the caller.
//  People – number of seats the group needs.
type Group struct {
	ID     int64 `json:"id"`     // journey.id
	People int   `json:"people"` // journey.people
}
