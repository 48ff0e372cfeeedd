// Package tick models the end-of-turn work queue of an event loop. Deferred
// callbacks run when the host calls Flush, after the current synchronous turn
// has finished.
package tick

// Scheduler defers a callback to the end of the current turn.
type Scheduler interface {
	Schedule(fn func())
}

// Queue is a FIFO Scheduler drained by Flush.
type Queue struct {
	pending []func()
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends fn to the queue.
func (q *Queue) Schedule(fn func()) {
	if fn == nil {
		return
	}
	q.pending = append(q.pending, fn)
}

// Flush runs queued callbacks until the queue is empty, including callbacks
// scheduled while flushing. It returns the number of callbacks run.
func (q *Queue) Flush() int {
	ran := 0
	for len(q.pending) > 0 {
		batch := q.pending
		q.pending = nil
		for _, fn := range batch {
			fn()
			ran++
		}
	}
	return ran
}

// Pending reports how many callbacks are waiting.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Immediate runs callbacks synchronously. Useful for hosts without an event
// loop; it gives up coalescing.
type Immediate struct{}

// Schedule runs fn right away.
func (Immediate) Schedule(fn func()) {
	if fn != nil {
		fn()
	}
}
