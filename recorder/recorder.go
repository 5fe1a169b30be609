// Package recorder owns the raw recording lifecycle: a linear state machine
// around the audio capture collaborator plus the remote transcription call.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shekohex/voicetype/audiocapture"
	"github.com/shekohex/voicetype/internal/broadcast"
	"github.com/shekohex/voicetype/internal/types"
)

var (
	ErrNotIdle      = errors.New("recording already in progress")
	ErrNotRecording = errors.New("no active recording")
)

// Transcriber converts a finalized audio file into text. Implementations
// wrap the remote transcription client with the current user settings.
type Transcriber interface {
	Transcribe(ctx context.Context, audio types.AudioFile) (string, error)
}

// Manager is the single writer of the recording state signal. One instance
// exists per application session; multiple observers may subscribe.
type Manager struct {
	capture    audiocapture.Capturer
	transcribe Transcriber

	mu     sync.Mutex
	gen    uint64 // bumped on every reset/cancel to invalidate in-flight work
	cancel context.CancelFunc

	state *broadcast.Signal[State]
}

// NewManager creates a recording manager in the Idle state.
func NewManager(capture audiocapture.Capturer, transcribe Transcriber) *Manager {
	return &Manager{
		capture:    capture,
		transcribe: transcribe,
		state:      broadcast.New(State{Phase: PhaseIdle}),
	}
}

// Current returns the current recording state.
func (m *Manager) Current() State { return m.state.Get() }

// Subscribe registers an observer of recording state transitions. The
// current state is delivered first.
func (m *Manager) Subscribe() (<-chan State, func()) { return m.state.Subscribe() }

// Start begins a new recording. It fails with ErrNotIdle unless the manager
// is Idle.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Get().Phase != PhaseIdle {
		m.mu.Unlock()
		return ErrNotIdle
	}
	gen := m.gen
	// The capture outlives the Start call; its lifetime is bounded by
	// Cancel, not by the caller's context.
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.state.Set(State{Phase: PhaseRecording, StartedAt: time.Now()})
	m.mu.Unlock()

	if err := m.capture.Start(sctx); err != nil {
		err = fmt.Errorf("start capture: %w", err)
		m.failIf(gen, err, true)
		m.releaseSession()
		return err
	}
	slog.Info("recording started")
	return nil
}

// Stop finalizes the capture, runs the transcription, and transitions to
// Success or Error. Valid only while Recording.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Get().Phase != PhaseRecording {
		m.mu.Unlock()
		return ErrNotRecording
	}
	gen := m.gen
	m.state.Set(State{Phase: PhaseProcessing, Progress: 0})
	m.mu.Unlock()

	audio, err := m.capture.Stop(ctx)
	if err != nil {
		err = fmt.Errorf("finalize capture: %w", err)
		m.failIf(gen, err, true)
		m.releaseSession()
		return err
	}
	m.setIf(gen, State{Phase: PhaseProcessing, Progress: 0.5})

	text, err := m.transcribe.Transcribe(ctx, audio)
	if err != nil {
		m.failIf(gen, err, retryableOf(err))
		m.releaseSession()
		return err
	}

	m.setIf(gen, State{Phase: PhaseSuccess, Audio: &audio, Transcription: text})
	m.releaseSession()
	slog.Info("recording transcribed", "duration", audio.Duration, "textLen", len(text))
	return nil
}

// Cancel discards any in-flight recording and resets to Idle. The underlying
// audio resource is released synchronously before Cancel returns. Calling
// Cancel while already Idle leaves the state at Idle.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	err := m.capture.Cancel()
	m.state.Set(State{Phase: PhaseIdle})
	if err != nil {
		return fmt.Errorf("cancel capture: %w", err)
	}
	return nil
}

// RetryFromError transitions Error → Idle.
func (m *Manager) RetryFromError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Get().Phase == PhaseError {
		m.gen++
		m.state.Set(State{Phase: PhaseIdle})
	}
}

// ResetToIdle transitions any terminal state back to Idle.
func (m *Manager) ResetToIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Get().Terminal() {
		m.gen++
		m.state.Set(State{Phase: PhaseIdle})
	}
}

// setIf applies the transition only when the session has not been cancelled
// or reset since gen was observed.
func (m *Manager) setIf(gen uint64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen {
		m.state.Set(s)
	}
}

func (m *Manager) failIf(gen uint64, err error, retryable bool) {
	slog.Error("recording failed", "error", err, "retryable", retryable)
	m.setIf(gen, State{Phase: PhaseError, Err: err, Retryable: retryable})
}

func (m *Manager) releaseSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func retryableOf(err error) bool {
	if te, ok := types.AsTranscriptionError(err); ok {
		return te.Retryable()
	}
	return false
}
