package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func nonRetryable(error) bool { return false }

func TestDoReturnsValueOnFirstSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := Do(context.Background(), Policy{MaxRetries: 3, InitialDelay: time.Millisecond},
		func(error) bool { return true },
		func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" {
		t.Fatalf("value = %q, want %q", v, "ok")
	}
	if calls != 1 {
		t.Fatalf("op invoked %d times, want 1", calls)
	}
}

func TestDoInvokesExactlyMaxRetriesPlusOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		maxRetries int
		wantCalls  int
	}{
		{"no retries", 0, 1},
		{"one retry", 1, 2},
		{"two retries", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), Policy{MaxRetries: tt.maxRetries, InitialDelay: time.Millisecond},
				func(error) bool { return true },
				func(context.Context) (int, error) {
					calls++
					return 0, errBoom
				})
			if !errors.Is(err, errBoom) {
				t.Fatalf("error = %v, want %v", err, errBoom)
			}
			if calls != tt.wantCalls {
				t.Fatalf("op invoked %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestDoPropagatesNonRetryableOnFirstFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), Policy{MaxRetries: 5, InitialDelay: time.Millisecond},
		nonRetryable,
		func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want %v", err, errBoom)
	}
	if calls != 1 {
		t.Fatalf("op invoked %d times, want 1", calls)
	}
}

func TestDoReturnsLastErrorEncountered(t *testing.T) {
	t.Parallel()

	errLast := errors.New("last")
	calls := 0
	_, err := Do(context.Background(), Policy{MaxRetries: 1, InitialDelay: time.Millisecond},
		func(error) bool { return true },
		func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, errBoom
			}
			return 0, errLast
		})
	if !errors.Is(err, errLast) {
		t.Fatalf("error = %v, want %v", err, errLast)
	}
}

func TestDoStopsWaitingOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, Policy{MaxRetries: 3, InitialDelay: time.Hour},
			func(error) bool { return true },
			func(context.Context) (int, error) {
				calls++
				return 0, errBoom
			})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Fatalf("op invoked %d times, want 1", calls)
	}
}
