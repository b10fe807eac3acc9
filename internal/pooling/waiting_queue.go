package pooling

import "container/list"

type waitingGroup struct {
	id    int64
	seats int
}

// waitingQueue keeps unseated groups in arrival order.
type waitingQueue struct {
	order *list.List
	byID  map[int64]*list.Element
}

func newWaitingQueue() *waitingQueue {
	return &waitingQueue{order: list.New(), byID: make(map[int64]*list.Element)}
}

func (q *waitingQueue) enqueue(g waitingGroup) {
	if _, ok := q.byID[g.id]; ok {
		panic("pooling: group enqueued twice")
	}
	q.byID[g.id] = q.order.PushBack(g)
}

// dequeueMatching removes and returns the first group, counting from the
// head, for which match holds.  Earlier arrivals always win over better
// fitting later ones.
func (q *waitingQueue) dequeueMatching(match func(waitingGroup) bool) (waitingGroup, bool) {
	for el := q.order.Front(); el != nil; el = el.Next() {
		g := el.Value.(waitingGroup)
		if match(g) {
			q.order.Remove(el)
			delete(q.byID, g.id)
			return g, true
		}
	}
	return waitingGroup{}, false
}

func (q *waitingQueue) removeByID(id int64) bool {
	el, ok := q.byID[id]
	if !ok {
		return false
	}
	q.order.Remove(el)
	delete(q.byID, id)
	return true
}

func (q *waitingQueue) contains(id int64) bool {
	_, ok := q.byID[id]
	return ok
}

func (q *waitingQueue) len() int { return q.order.Len() }

// ids lists waiting group ids from head to tail.
func (q *waitingQueue) ids() []int64 {
	out := make([]int64, 0, q.order.Len())
	for el := q.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(waitingGroup).id)
	}
	return out
}

func (q *waitingQueue) reset() {
	q.order.Init()
	q.byID = make(map[int64]*list.Element)
}
