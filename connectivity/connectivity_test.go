package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestMonitorProbesAndStops(t *testing.T) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
	}))
	defer srv.Close()

	m := NewHTTPMonitor(srv.URL, 10*time.Millisecond)
	m.StartMonitoring(context.Background())

	deadline := time.After(2 * time.Second)
	for probes.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("monitor never probed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	m.StopMonitoring()
	if !m.Online() {
		t.Error("expected online after successful probes")
	}

	// Stopping twice must not block or panic.
	m.StopMonitoring()
}

func TestMonitorDetectsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	// Closed server: every probe fails.
	url := srv.URL
	srv.Close()

	m := NewHTTPMonitor(url, 10*time.Millisecond)
	m.StartMonitoring(context.Background())
	defer m.StopMonitoring()

	deadline := time.After(2 * time.Second)
	for m.Online() {
		select {
		case <-deadline:
			t.Fatal("monitor never went offline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStartMonitoringTwiceIsNoop(t *testing.T) {
	m := NewHTTPMonitor("http://127.0.0.1:0", time.Hour)
	ctx := context.Background()

	m.StartMonitoring(ctx)
	first := m.done
	m.StartMonitoring(ctx)
	if m.done != first {
		t.Error("second StartMonitoring replaced the running loop")
	}
	m.StopMonitoring()
}
