package pooling

// assignment is what the engine knows about a registered group.  car is
// nil while the group waits.
type assignment struct {
	car   *fleetCar
	seats int
}

// assignmentTable maps group ids to their assignment and is the only
// authority on whether a group is registered.
type assignmentTable struct {
	groups map[int64]*assignment
}

func newAssignmentTable() *assignmentTable {
	return &assignmentTable{groups: make(map[int64]*assignment)}
}

func (t *assignmentTable) recordSeated(groupID int64, car *fleetCar, seats int) error {
	if t.exists(groupID) {
		return &GroupError{GroupID: groupID, Err: ErrDuplicateGroup}
	}
	t.groups[groupID] = &assignment{car: car, seats: seats}
	return nil
}

func (t *assignmentTable) recordWaiting(groupID int64, seats int) error {
	if t.exists(groupID) {
		return &GroupError{GroupID: groupID, Err: ErrDuplicateGroup}
	}
	t.groups[groupID] = &assignment{seats: seats}
	return nil
}

// seat moves an existing waiting record onto car.
func (t *assignmentTable) seat(groupID int64, car *fleetCar) {
	a, ok := t.groups[groupID]
	if !ok || a.car != nil {
		panic("pooling: seating a group that is not waiting")
	}
	a.car = car
}

func (t *assignmentTable) lookup(groupID int64) (*assignment, bool) {
	a, ok := t.groups[groupID]
	return a, ok
}

func (t *assignmentTable) remove(groupID int64) { delete(t.groups, groupID) }

func (t *assignmentTable) exists(groupID int64) bool {
	_, ok := t.groups[groupID]
	return ok
}

func (t *assignmentTable) len() int { return len(t.groups) }

func (t *assignmentTable) reset() { t.groups = make(map[int64]*assignment) }
