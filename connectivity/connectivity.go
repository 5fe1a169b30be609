// Package connectivity monitors reachability of the transcription endpoint.
package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Monitor watches network reachability for the lifetime of a workflow.
type Monitor interface {
	StartMonitoring(ctx context.Context)
	StopMonitoring()
}

const (
	defaultProbeURL = "https://api.openai.com/v1/models"
	defaultInterval = 30 * time.Second
)

// HTTPMonitor periodically probes an endpoint and logs connectivity changes.
type HTTPMonitor struct {
	url      string
	interval time.Duration
	client   *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	online bool
}

// NewHTTPMonitor creates a monitor. Empty url and zero interval use the
// defaults.
func NewHTTPMonitor(url string, interval time.Duration) *HTTPMonitor {
	if url == "" {
		url = defaultProbeURL
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &HTTPMonitor{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		online:   true, // assume reachable until a probe says otherwise
	}
}

// StartMonitoring begins polling. Calling it while already running is a
// no-op.
func (m *HTTPMonitor) StartMonitoring(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	mctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(mctx, m.done)
}

// StopMonitoring stops polling and waits for the loop to exit. Safe to call
// multiple times.
func (m *HTTPMonitor) StopMonitoring() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Online reports the result of the most recent probe.
func (m *HTTPMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *HTTPMonitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *HTTPMonitor) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.url, nil)
	if err != nil {
		return
	}

	resp, err := m.client.Do(req)
	online := err == nil
	if resp != nil {
		resp.Body.Close()
	}

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if changed {
		if online {
			slog.Info("connectivity restored", "url", m.url)
		} else {
			slog.Warn("connectivity lost", "url", m.url, "error", err)
		}
	}
}
