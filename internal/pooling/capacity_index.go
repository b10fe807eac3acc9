package pooling

import (
	"container/list"
	"fmt"
)

// fleetCar is the engine's mutable view of a car.
type fleetCar struct {
	id    int64
	seats int
	free  int
}

// slot remembers where a car currently sits in the index.
type slot struct {
	bucket int
	el     *list.Element
}

// capacityIndex buckets cars by their number of free seats.  Bucket i
// holds, in insertion order, every car with exactly i free seats.
type capacityIndex struct {
	buckets []*list.List
	slots   map[int64]slot
}

func newCapacityIndex(maxSeats int) *capacityIndex {
	x := &capacityIndex{
		buckets: make([]*list.List, maxSeats+1),
		slots:   make(map[int64]slot),
	}
	for i := range x.buckets {
		x.buckets[i] = list.New()
	}
	return x
}

// put files car under its current free seat count.  A previous placement
// of the same car id is dropped first.
func (x *capacityIndex) put(car *fleetCar) {
	if car.free < 0 || car.free >= len(x.buckets) {
		panic(fmt.Sprintf("pooling: car %d has %d free seats, index covers [0, %d]", car.id, car.free, len(x.buckets)-1))
	}
	x.remove(car.id)
	el := x.buckets[car.free].PushBack(car)
	x.slots[car.id] = slot{bucket: car.free, el: el}
}

// remove takes the car out of whatever bucket holds it.  It reports
// whether the car was indexed.
func (x *capacityIndex) remove(id int64) bool {
	s, ok := x.slots[id]
	if !ok {
		return false
	}
	x.buckets[s.bucket].Remove(s.el)
	delete(x.slots, id)
	return true
}

// takeSmallestAvailable removes and returns the first car of the smallest
// non-empty bucket holding at least minFree free seats.
func (x *capacityIndex) takeSmallestAvailable(minFree int) (*fleetCar, bool) {
	if minFree < 0 {
		minFree = 0
	}
	for free := minFree; free < len(x.buckets); free++ {
		front := x.buckets[free].Front()
		if front == nil {
			continue
		}
		car := front.Value.(*fleetCar)
		x.remove(car.id)
		return car, true
	}
	return nil, false
}

// removeAll empties every bucket.
func (x *capacityIndex) removeAll() {
	for _, b := range x.buckets {
		b.Init()
	}
	x.slots = make(map[int64]slot)
}

func (x *capacityIndex) len() int { return len(x.slots) }

// each visits every indexed car together with the bucket it is filed under.
func (x *capacityIndex) each(fn func(bucket int, car *fleetCar)) {
	for free, b := range x.buckets {
		for el := b.Front(); el != nil; el = el.Next() {
			fn(free, el.Value.(*fleetCar))
		}
	}
}
