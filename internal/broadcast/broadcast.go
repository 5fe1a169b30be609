// Package broadcast provides a single-producer state signal with
// current-value delivery on subscribe.
package broadcast

import "sync"

const subscriberBuffer = 16

// Signal holds a current value and fans out every update to all subscribers
// in emission order. Only the owning component may call Set; any goroutine
// may Get or Subscribe. A subscriber that falls behind loses the oldest
// buffered values, never the most recent one.
type Signal[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[int]chan T
	next int
}

// New creates a signal with the given initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{cur: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Set publishes a new value. It never blocks on slow subscribers.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = v
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// Full buffer: drop the oldest value to make room.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Subscribe registers a new observer. The channel yields the current value
// first, then every subsequent update. The returned function cancels the
// subscription and closes the channel.
func (s *Signal[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan T, subscriberBuffer)
	ch <- s.cur
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
