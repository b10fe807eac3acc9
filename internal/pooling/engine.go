// Package pooling implements the car allocation engine.  Groups are
// seated first come first served in the car with the fewest free seats
// that still fits them; groups that do not fit anywhere wait in arrival
// order and are re-offered seats every time a car is released.
package pooling

import (
	"fmt"
	"sync"

	"github.com/iliyamo/car-pooling/internal/model"
)

// Seating reports a group that was placed in a car.
type Seating struct {
	Group model.Group
	Car   model.Car
}

// DropOff describes the effect of removing a group.  Car is nil when the
// dropped group was still waiting.  Backfilled lists, in seating order,
// the waiting groups that took the released seats.
type DropOff struct {
	Group      model.Group
	Car        *model.Car
	Backfilled []Seating
}

// Engine owns the capacity index, the assignment table and the waiting
// queue.  A single mutex guards all three so no caller ever observes them
// mid-update.  The zero value is not usable; construct with NewEngine.
type Engine struct {
	mu       sync.Mutex
	minSeats int
	maxSeats int

	index   *capacityIndex
	table   *assignmentTable
	waiting *waitingQueue
}

// NewEngine returns an engine with an empty fleet accepting cars with
// between minSeats and maxSeats seats.  It panics on nonsensical bounds;
// configuration is validated before this point.
func NewEngine(minSeats, maxSeats int) *Engine {
	if minSeats < 1 || maxSeats < minSeats {
		panic(fmt.Sprintf("pooling: invalid seat bounds [%d, %d]", minSeats, maxSeats))
	}
	return &Engine{
		minSeats: minSeats,
		maxSeats: maxSeats,
		index:    newCapacityIndex(maxSeats),
		table:    newAssignmentTable(),
		waiting:  newWaitingQueue(),
	}
}

// SeatBounds returns the configured [min, max] seat range.
func (e *Engine) SeatBounds() (int, int) { return e.minSeats, e.maxSeats }

// ReplaceFleet discards every car and every group and installs cars as
// the new, empty fleet.  The whole list is validated first; on error the
// previous state is left untouched.  A car id that repeats replaces the
// earlier entry.
func (e *Engine) ReplaceFleet(cars []model.Car) error {
	for _, c := range cars {
		if c.Seats < e.minSeats || c.Seats > e.maxSeats {
			return &InvalidCapacityError{CarID: c.ID, Seats: c.Seats, Min: e.minSeats, Max: e.maxSeats}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.index.removeAll()
	e.table.reset()
	e.waiting.reset()
	for _, c := range cars {
		e.index.put(&fleetCar{id: c.ID, seats: c.Seats, free: c.Seats})
	}
	return nil
}

// RegisterGroup seats g in the smallest fitting car or, when none fits,
// appends it to the waiting list.  The returned car is nil when the group
// waits.  The only failure is a group id that is already registered.
func (e *Engine) RegisterGroup(g model.Group) (*model.Car, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.table.exists(g.ID) {
		return nil, &GroupError{GroupID: g.ID, Err: ErrDuplicateGroup}
	}

	car, ok := e.index.takeSmallestAvailable(g.People)
	if !ok {
		e.waiting.enqueue(waitingGroup{id: g.ID, seats: g.People})
		if err := e.table.recordWaiting(g.ID, g.People); err != nil {
			panic(err)
		}
		return nil, nil
	}

	car.free -= g.People
	e.index.put(car)
	if err := e.table.recordSeated(g.ID, car, g.People); err != nil {
		panic(err)
	}
	return publicCar(car), nil
}

// DropGroup forgets a group.  If it was travelling, its seats are released
// and offered to waiting groups in arrival order until no waiting group
// fits or the car is full.
func (e *Engine) DropGroup(groupID int64) (DropOff, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.table.lookup(groupID)
	if !ok {
		return DropOff{}, &GroupError{GroupID: groupID, Err: ErrGroupNotFound}
	}
	out := DropOff{Group: model.Group{ID: groupID, People: a.seats}}
	e.table.remove(groupID)

	if a.car == nil {
		if !e.waiting.removeByID(groupID) {
			panic(fmt.Sprintf("pooling: waiting group %d missing from queue", groupID))
		}
		return out, nil
	}

	car := a.car
	car.free += a.seats
	for car.free > 0 {
		next, ok := e.waiting.dequeueMatching(func(w waitingGroup) bool { return w.seats <= car.free })
		if !ok {
			break
		}
		car.free -= next.seats
		e.table.seat(next.id, car)
		out.Backfilled = append(out.Backfilled, Seating{
			Group: model.Group{ID: next.id, People: next.seats},
			Car:   *publicCar(car),
		})
	}
	e.index.put(car)
	out.Car = publicCar(car)
	return out, nil
}

// LocateGroup returns the car a group travels in, or nil while it waits.
func (e *Engine) LocateGroup(groupID int64) (*model.Car, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.table.lookup(groupID)
	if !ok {
		return nil, &GroupError{GroupID: groupID, Err: ErrGroupNotFound}
	}
	if a.car == nil {
		return nil, nil
	}
	return publicCar(a.car), nil
}

// Stats summarises the current state.
func (e *Engine) Stats() model.PoolStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s model.PoolStats
	e.index.each(func(_ int, car *fleetCar) {
		s.Cars++
		s.Seats += car.seats
		s.FreeSeats += car.free
	})
	s.GroupsWaiting = e.waiting.len()
	s.GroupsSeated = e.table.len() - s.GroupsWaiting
	return s
}

// WaitingGroups returns the ids of waiting groups in arrival order.
func (e *Engine) WaitingGroups() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waiting.ids()
}

// CheckInvariants verifies that seat accounting, bucket placement and the
// seated/waiting split agree with each other.  It is used by the periodic
// audit and by tests.
func (e *Engine) CheckInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	occupied := make(map[*fleetCar]int)
	for id, a := range e.table.groups {
		if a.car == nil {
			if !e.waiting.contains(id) {
				return fmt.Errorf("group %d is neither seated nor waiting", id)
			}
			continue
		}
		if e.waiting.contains(id) {
			return fmt.Errorf("group %d is both seated and waiting", id)
		}
		occupied[a.car] += a.seats
	}
	if e.waiting.len() != len(e.waiting.byID) {
		return fmt.Errorf("waiting list holds %d entries but indexes %d", e.waiting.len(), len(e.waiting.byID))
	}
	for _, id := range e.waiting.ids() {
		if a, ok := e.table.lookup(id); !ok || a.car != nil {
			return fmt.Errorf("waiting group %d has no waiting assignment", id)
		}
	}

	var err error
	seen := 0
	e.index.each(func(bucket int, car *fleetCar) {
		seen++
		if err != nil {
			return
		}
		if bucket != car.free {
			err = fmt.Errorf("car %d filed under %d free seats but has %d", car.id, bucket, car.free)
			return
		}
		if car.free+occupied[car] != car.seats {
			err = fmt.Errorf("car %d: %d free + %d occupied != %d seats", car.id, car.free, occupied[car], car.seats)
			return
		}
		delete(occupied, car)
	})
	if err != nil {
		return err
	}
	if seen != e.index.len() {
		return fmt.Errorf("index lists %d cars but tracks %d", seen, e.index.len())
	}
	for car := range occupied {
		return fmt.Errorf("group seated in car %d which is not in the fleet", car.id)
	}
	return nil
}

func publicCar(c *fleetCar) *model.Car {
	return &model.Car{ID: c.id, Seats: c.seats}
}
