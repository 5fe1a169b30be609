// Package workflow sequences audio capture, remote transcription, history
// persistence and text insertion, recovering from partial failures at each
// stage. A recording is never silently lost; a failed insertion is never
// reported as success.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shekohex/voicetype/config"
	"github.com/shekohex/voicetype/connectivity"
	"github.com/shekohex/voicetype/insertion"
	"github.com/shekohex/voicetype/internal/broadcast"
	"github.com/shekohex/voicetype/internal/types"
	"github.com/shekohex/voicetype/readiness"
	"github.com/shekohex/voicetype/recorder"
	"github.com/shekohex/voicetype/retry"
	"github.com/shekohex/voicetype/stt"
)

// Named retry policies, one per externally-fallible operation, so tests can
// assert the exact budget applied to each.
var (
	StartRecordingPolicy = retry.Policy{MaxRetries: 2, InitialDelay: time.Second}
	StopRecordingPolicy  = retry.Policy{MaxRetries: 1, InitialDelay: 500 * time.Millisecond}
	TextInsertionPolicy  = retry.Policy{MaxRetries: 2, InitialDelay: 500 * time.Millisecond}
)

// SettingsSource yields the current user settings.
type SettingsSource interface {
	Settings() config.Settings
}

// HistoryStore persists finished transcriptions.
type HistoryStore interface {
	Save(ctx context.Context, item types.HistoryItem) (string, error)
}

// Notifier surfaces user-facing messages; implementations must not block.
type Notifier interface {
	ShowToast(message string, long bool)
	ShowError(err error, origin string)
}

// UseCase is the transcription workflow orchestrator and the single writer
// of the workflow state signal.
type UseCase struct {
	rec      *recorder.Manager
	ready    *readiness.Initializer
	settings SettingsSource
	client   stt.Client
	inserter insertion.Inserter
	store    HistoryStore
	notifier Notifier
	monitor  connectivity.Monitor

	state *broadcast.Signal[State]

	mu        sync.Mutex
	obsCancel context.CancelFunc
	obsDone   chan struct{}
}

// New assembles the orchestrator. Call Initialize before use and Cleanup when
// done.
func New(
	rec *recorder.Manager,
	ready *readiness.Initializer,
	settings SettingsSource,
	client stt.Client,
	inserter insertion.Inserter,
	store HistoryStore,
	notifier Notifier,
	monitor connectivity.Monitor,
) *UseCase {
	return &UseCase{
		rec:      rec,
		ready:    ready,
		settings: settings,
		client:   client,
		inserter: inserter,
		store:    store,
		notifier: notifier,
		monitor:  monitor,
		state:    broadcast.New(State{Phase: PhaseIdle}),
	}
}

// State returns the current workflow state.
func (u *UseCase) State() State { return u.state.Get() }

// Subscribe registers an observer of workflow state transitions. The current
// state is delivered first.
func (u *UseCase) Subscribe() (<-chan State, func()) { return u.state.Subscribe() }

// RecordingState passes through the recorder's current state.
func (u *UseCase) RecordingState() recorder.State { return u.rec.Current() }

// SubscribeRecording passes through the recorder's state signal.
func (u *UseCase) SubscribeRecording() (<-chan recorder.State, func()) { return u.rec.Subscribe() }

// Initialize binds the background capture service, checks permissions, and
// starts the recorder observation task plus connection monitoring. It is run
// once at startup and re-run by RetryFromError.
func (u *UseCase) Initialize(ctx context.Context) error {
	outcome, err := u.ready.EnsureReady(ctx)
	if err != nil {
		u.failWith(err, "initialize")
		return err
	}
	if !outcome.Ready {
		slog.Warn("permissions not granted", "denied", outcome.Denied)
		u.state.Set(State{Phase: PhasePermissionDenied, Denied: outcome.Denied})
		return nil
	}

	u.state.Set(State{Phase: PhaseServiceReady})
	u.startObserving()
	return nil
}

// startObserving launches the background task that mirrors recorder state
// into workflow state for the lifetime of the orchestrator.
func (u *UseCase) startObserving() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.obsCancel != nil {
		return
	}

	obsCtx, cancel := context.WithCancel(context.Background())
	u.obsCancel = cancel
	u.obsDone = make(chan struct{})

	sub, unsub := u.rec.Subscribe()
	go func(done chan struct{}) {
		defer close(done)
		defer unsub()
		for {
			select {
			case <-obsCtx.Done():
				return
			case st, ok := <-sub:
				if !ok {
					return
				}
				u.onRecorderState(obsCtx, st)
			}
		}
	}(u.obsDone)

	u.monitor.StartMonitoring(obsCtx)
}

// onRecorderState maps one recorder transition onto the workflow state.
func (u *UseCase) onRecorderState(ctx context.Context, st recorder.State) {
	switch st.Phase {
	case recorder.PhaseIdle:
		// An Idle echo only matters while a recording flow is active;
		// it must not stomp ServiceReady or a terminal state.
		switch u.state.Get().Phase {
		case PhaseRecording, PhaseProcessing, PhaseInsertingText:
			u.state.Set(State{Phase: PhaseIdle})
		}
	case recorder.PhaseRecording:
		u.state.Set(State{Phase: PhaseRecording})
	case recorder.PhaseProcessing:
		u.state.Set(State{Phase: PhaseProcessing, Progress: st.Progress})
	case recorder.PhaseError:
		u.failWith(st.Err, "recording")
	case recorder.PhaseSuccess:
		u.handleTranscriptionSuccess(ctx, st)
	}
}

// handleTranscriptionSuccess persists and inserts a finished transcription.
// Persistence failure never aborts insertion: losing a statistics record is
// preferable to losing transcribed text.
func (u *UseCase) handleTranscriptionSuccess(ctx context.Context, st recorder.State) {
	text := strings.TrimSpace(st.Transcription)
	if text == "" {
		u.notifier.ShowToast("No speech detected", false)
		u.state.Set(State{Phase: PhaseSuccess, Transcription: "", TextInserted: false})
		return
	}

	u.state.Set(State{Phase: PhaseInsertingText})

	item := u.buildHistoryItem(text, st)
	if _, err := u.store.Save(ctx, item); err != nil {
		slog.Warn("save transcription history", "error", err, "textLen", len(text))
	}

	inserted, err := retry.Do(ctx, TextInsertionPolicy, insertionRetryable,
		func(ctx context.Context) (bool, error) {
			return u.inserter.InsertText(ctx, text)
		})
	if err != nil {
		u.failWith(err, "insert text")
		return
	}
	if !inserted {
		// Report the textual result first, then the hard failure: the
		// transcription is user-visible even though delivery failed.
		u.state.Set(State{Phase: PhaseSuccess, Transcription: text, TextInserted: false})
		u.failWith(types.NewTextInsertionFailed(text), "insert text")
		return
	}

	u.state.Set(State{Phase: PhaseSuccess, Transcription: text, TextInserted: true})
}

func (u *UseCase) buildHistoryItem(text string, st recorder.State) types.HistoryItem {
	cfg := u.settings.Settings()

	var duration time.Duration
	var audioPath string
	if st.Audio != nil {
		duration = st.Audio.Duration
		audioPath = st.Audio.Path
	}

	words := len(strings.Fields(text))
	var wpm float64
	if mins := duration.Minutes(); mins > 0 {
		wpm = float64(words) / mins
	}

	return types.HistoryItem{
		Text:           text,
		Timestamp:      time.Now(),
		Duration:       duration,
		AudioPath:      audioPath,
		Model:          cfg.Model,
		Language:       cfg.Language,
		CustomPrompt:   cfg.CustomPrompt,
		Temperature:    cfg.Temperature,
		WordCount:      words,
		WordsPerMinute: wpm,
	}
}

// StartRecording verifies every precondition and delegates to the recorder
// under the start retry policy. Precondition failures bypass retry.
func (u *UseCase) StartRecording(ctx context.Context) error {
	_, err := retry.Do(ctx, StartRecordingPolicy, startRetryable,
		func(ctx context.Context) (struct{}, error) {
			if err := u.checkPreconditions(ctx); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, u.rec.Start(ctx)
		})
	if err != nil {
		u.failWith(err, "start recording")
		return err
	}
	return nil
}

// checkPreconditions raises a distinct TranscriptionError for each unmet
// requirement, in a fixed order.
func (u *UseCase) checkPreconditions(ctx context.Context) error {
	r, err := u.ready.Readiness(ctx)
	if err != nil || !r.ServiceConnected {
		return types.NewTranscriptionError(types.ErrServiceNotConfigured, errors.Join(errCaptureServiceDown, err))
	}
	if !r.PermissionsGranted {
		return types.NewTranscriptionError(types.ErrServiceNotConfigured, errPermissionsMissing)
	}
	if strings.TrimSpace(u.settings.Settings().APIKey) == "" {
		return types.NewTranscriptionError(types.ErrAPIKeyMissing, nil)
	}
	if !u.client.IsConfigured() {
		return types.NewTranscriptionError(types.ErrServiceNotConfigured, errClientNotConfigured)
	}
	if !u.inserter.IsServiceAvailable() {
		return types.NewTranscriptionError(types.ErrAccessibilityNotEnabled, nil)
	}
	return nil
}

var (
	errCaptureServiceDown  = errors.New("capture service not connected")
	errPermissionsMissing  = errors.New("required permissions not granted")
	errClientNotConfigured = errors.New("transcription client not configured")
)

// StopRecording delegates to the recorder under the stop retry policy.
// Capture and transcription failures surface through the observation task;
// only call-level failures are returned here.
func (u *UseCase) StopRecording(ctx context.Context) error {
	_, err := retry.Do(ctx, StopRecordingPolicy, stopRetryable,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, u.rec.Stop(ctx)
		})
	if err != nil {
		slog.Error("stop recording", "error", err)
		return err
	}
	return nil
}

// CancelRecording discards any in-flight recording and forces the workflow
// back to Idle. Idempotent.
func (u *UseCase) CancelRecording() error {
	err := u.rec.Cancel()
	u.state.Set(State{Phase: PhaseIdle})
	return err
}

// RetryFromError returns a terminal Error state to Idle and re-runs the
// initialization sequence.
func (u *UseCase) RetryFromError(ctx context.Context) error {
	u.rec.RetryFromError()
	u.state.Set(State{Phase: PhaseIdle})
	return u.Initialize(ctx)
}

// ResetToIdle returns any terminal state to Idle without re-initializing.
func (u *UseCase) ResetToIdle() {
	u.rec.ResetToIdle()
	u.state.Set(State{Phase: PhaseIdle})
}

// Cleanup stops connection monitoring, the observation task, any in-flight
// recording, and the service binding. Safe to call multiple times.
func (u *UseCase) Cleanup() {
	u.monitor.StopMonitoring()

	u.mu.Lock()
	cancel, done := u.obsCancel, u.obsDone
	u.obsCancel, u.obsDone = nil, nil
	u.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	_ = u.rec.Cancel()
	u.ready.Cleanup()
}

// failWith classifies err, logs it, notifies the user, and emits the Error
// state. Secrets never appear in the log context.
func (u *UseCase) failWith(err error, origin string) {
	cls := Classify(err)
	slog.Error(origin, "error", err, "retryable", cls.Retryable)
	u.notifier.ShowError(err, origin)
	u.state.Set(State{Phase: PhaseError, Err: err, Retryable: cls.Retryable})
}

// startRetryable retries only unclassified transient failures: precondition
// errors and an already-running recorder bypass the budget.
func startRetryable(err error) bool {
	if _, ok := types.AsTranscriptionError(err); ok {
		return false
	}
	return !errors.Is(err, recorder.ErrNotIdle)
}

// stopRetryable retries transient audio failures only.
func stopRetryable(err error) bool {
	if _, ok := types.AsTranscriptionError(err); ok {
		return false
	}
	return !errors.Is(err, recorder.ErrNotRecording)
}

// insertionRetryable retries everything except accessibility/permission
// failures, which cannot resolve within the retry window.
func insertionRetryable(err error) bool {
	if te, ok := types.AsTranscriptionError(err); ok {
		switch te.Kind {
		case types.ErrAccessibilityNotEnabled, types.ErrAuthentication:
			return false
		}
	}
	return true
}
