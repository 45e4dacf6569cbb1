package kafka

import "sync"

type node[T any] struct {
	payload    T
	prev, next *node[T]
}

// tracker resolves tracked records in any order and reports the highest
// record below which every record has been resolved. It is safe for
// concurrent use.
type tracker[T any] struct {
	mu         sync.Mutex
	done       *T
	pending    int
	start, end *node[T]
}

// Track appends p and returns its resolve function. resolve is idempotent and
// returns the highest contiguously resolved payload so far, or nil if the
// first tracked record is still outstanding.
func (t *tracker[T]) Track(p T) func() *T {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := &node[T]{payload: p, prev: t.end}
	if t.end != nil {
		t.end.next = n
	} else {
		t.start = n
	}
	t.end = n
	t.pending++

	var once sync.Once
	return func() *T {
		t.mu.Lock()
		defer t.mu.Unlock()
		once.Do(func() { t.resolveLocked(n) })
		return t.done
	}
}

func (t *tracker[T]) resolveLocked(n *node[T]) {
	t.pending--
	if n.prev != nil {
		// An earlier record is outstanding; it inherits this payload so that
		// resolving it later advances past n as well.
		n.prev.payload = n.payload
		n.prev.next = n.next
	} else {
		p := n.payload
		t.done = &p
		t.start = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		t.end = n.prev
	}
}

func (t *tracker[T]) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
