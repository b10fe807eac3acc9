package model

// PoolStats is a point-in-time summary of the allocation state.  It is
// served by the health endpoint and feeds the fleet gauges.
type PoolStats struct {
	Cars          int `json:"cars"`           // active cars in the fleet
	Seats         int `json:"seats"`          // total seat capacity of the fleet
	FreeSeats     int `json:"free_seats"`     // seats not occupied by any group
	GroupsSeated  int `json:"groups_seated"`  // groups travelling in a car
	GroupsWaiting int `json:"groups_waiting"` // groups in the waiting list
}
