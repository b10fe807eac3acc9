package pooling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitingQueueDequeueMatchingPrefersEarliest(t *testing.T) {
	q := newWaitingQueue()
	q.enqueue(waitingGroup{id: 1, seats: 5})
	q.enqueue(waitingGroup{id: 2, seats: 3})
	q.enqueue(waitingGroup{id: 3, seats: 4})

	g, ok := q.dequeueMatching(func(w waitingGroup) bool { return w.seats <= 4 })
	require.True(t, ok)
	assert.Equal(t, int64(2), g.id)
	assert.Equal(t, []int64{1, 3}, q.ids())

	_, ok = q.dequeueMatching(func(w waitingGroup) bool { return w.seats <= 2 })
	assert.False(t, ok)
	assert.Equal(t, []int64{1, 3}, q.ids())
}

func TestWaitingQueueRemoveByID(t *testing.T) {
	q := newWaitingQueue()
	q.enqueue(waitingGroup{id: 1, seats: 2})
	q.enqueue(waitingGroup{id: 2, seats: 2})
	q.enqueue(waitingGroup{id: 3, seats: 2})

	assert.True(t, q.removeByID(2))
	assert.False(t, q.removeByID(2))
	assert.False(t, q.contains(2))
	assert.Equal(t, []int64{1, 3}, q.ids())
	assert.Equal(t, 2, q.len())
}

func TestWaitingQueueEnqueueTwicePanics(t *testing.T) {
	q := newWaitingQueue()
	q.enqueue(waitingGroup{id: 1, seats: 2})
	assert.Panics(t, func() { q.enqueue(waitingGroup{id: 1, seats: 3}) })
}

func TestAssignmentTableRejectsDuplicates(t *testing.T) {
	tbl := newAssignmentTable()
	car := &fleetCar{id: 1, seats: 4, free: 4}

	require.NoError(t, tbl.recordSeated(1, car, 2))
	require.NoError(t, tbl.recordWaiting(2, 3))

	assert.ErrorIs(t, tbl.recordSeated(1, car, 2), ErrDuplicateGroup)
	assert.ErrorIs(t, tbl.recordWaiting(2, 3), ErrDuplicateGroup)

	a, ok := tbl.lookup(2)
	require.True(t, ok)
	assert.Nil(t, a.car)

	tbl.seat(2, car)
	a, _ = tbl.lookup(2)
	assert.Same(t, car, a.car)
	assert.Panics(t, func() { tbl.seat(2, car) })

	tbl.remove(1)
	assert.False(t, tbl.exists(1))
	assert.Equal(t, 1, tbl.len())
}
