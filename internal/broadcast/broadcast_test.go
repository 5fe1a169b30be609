package broadcast

import "testing"

func TestSubscribeDeliversCurrentValueFirst(t *testing.T) {
	s := New(42)

	ch, cancel := s.Subscribe()
	defer cancel()

	if got := <-ch; got != 42 {
		t.Fatalf("first value = %d, want 42", got)
	}
}

func TestUpdatesArriveInEmissionOrder(t *testing.T) {
	s := New(0)

	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 1; i <= 5; i++ {
		s.Set(i)
	}

	for want := 0; want <= 5; want++ {
		if got := <-ch; got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestLateSubscriberSeesOnlyCurrentState(t *testing.T) {
	s := New(0)
	s.Set(1)
	s.Set(2)

	ch, cancel := s.Subscribe()
	defer cancel()

	if got := <-ch; got != 2 {
		t.Fatalf("late subscriber got %d, want 2", got)
	}
	if got := s.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
}

func TestSlowSubscriberKeepsLatestValue(t *testing.T) {
	s := New(0)

	ch, cancel := s.Subscribe()
	defer cancel()

	// Overflow the buffer without draining.
	last := 0
	for i := 1; i <= subscriberBuffer*3; i++ {
		s.Set(i)
		last = i
	}

	var got int
	for v := range ch {
		got = v
		if len(ch) == 0 {
			break
		}
	}
	if got != last {
		t.Fatalf("final drained value = %d, want %d", got, last)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	s := New(0)

	ch, cancel := s.Subscribe()
	<-ch
	cancel()
	cancel()

	// Set after cancel must not panic on the closed channel.
	s.Set(1)

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}
}
