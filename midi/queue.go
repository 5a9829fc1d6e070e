package midi

import "sync"

// Queue buffers events between the driver callback and the update tick
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// Push appends an event; safe to call from driver goroutines
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns every pending event in arrival order and empties the queue
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
