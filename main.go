// voicetype captures microphone audio on a hotkey, transcribes it remotely,
// types the result into the focused application, and records usage history.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/shekohex/voicetype/audiocapture"
	"github.com/shekohex/voicetype/config"
	"github.com/shekohex/voicetype/connectivity"
	"github.com/shekohex/voicetype/history"
	"github.com/shekohex/voicetype/hotkey"
	"github.com/shekohex/voicetype/insertion"
	"github.com/shekohex/voicetype/internal/types"
	"github.com/shekohex/voicetype/readiness"
	"github.com/shekohex/voicetype/recorder"
	"github.com/shekohex/voicetype/stt"
	"github.com/shekohex/voicetype/workflow"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("VOICETYPE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	store, err := history.Open(filepath.Join(dataDir, "history"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("close history store", "error", err)
		}
	}()

	capturer := audiocapture.NewFFmpeg(audiocapture.Config{
		Command: cfg.RecorderCommand,
		Dir:     filepath.Join(dataDir, "recordings"),
	})
	if err := os.MkdirAll(filepath.Join(dataDir, "recordings"), 0755); err != nil {
		return fmt.Errorf("create recordings dir: %w", err)
	}

	client := stt.NewOpenAI(cfg.Settings.APIKey, cfg.Settings.BaseURL)
	rec := recorder.NewManager(capturer, &settingsTranscriber{client: client, cfg: cfg})

	var inserter insertion.Inserter
	if cfg.TyperCommand != "" {
		inserter = insertion.NewTyperCommand(cfg.TyperCommand)
	} else {
		inserter = insertion.NewTyper()
	}

	uc := workflow.New(
		rec,
		readiness.NewInitializer(&desktopBinder{recorder: recorderCommand(cfg)}, &desktopPermissions{recorder: recorderCommand(cfg), inserter: inserter}),
		&configSettings{cfg: cfg},
		client,
		inserter,
		store,
		&consoleNotifier{},
		connectivity.NewHTTPMonitor("", 0),
	)
	defer uc.Cleanup()

	ctx := context.Background()
	if err := uc.Initialize(ctx); err != nil {
		slog.Warn("initialization failed; use 'retry' after fixing the cause", "error", err)
	}

	// Presentation stand-in: print workflow transitions.
	states, unsub := uc.Subscribe()
	defer unsub()
	go func() {
		for st := range states {
			printState(st)
		}
	}()

	hk := hotkey.NewManager(func() { toggle(ctx, uc) })
	if err := hk.Start(); err != nil {
		slog.Warn("global hotkey unavailable", "error", err)
	} else {
		defer hk.Stop()
	}

	slog.Info("voicetype ready", "version", version)
	fmt.Println("commands: start | stop | cancel | retry | stats | quit")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig.String())
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := dispatch(ctx, uc, store, line); quit {
				return nil
			}
		}
	}
}

func dispatch(ctx context.Context, uc *workflow.UseCase, store *history.Store, line string) bool {
	switch line {
	case "start":
		if err := uc.StartRecording(ctx); err != nil {
			slog.Error("start recording", "error", err)
		}
	case "stop":
		go func() {
			if err := uc.StopRecording(ctx); err != nil {
				slog.Error("stop recording", "error", err)
			}
		}()
	case "cancel":
		if err := uc.CancelRecording(); err != nil {
			slog.Error("cancel recording", "error", err)
		}
	case "retry":
		if err := uc.RetryFromError(ctx); err != nil {
			slog.Error("retry", "error", err)
		}
	case "stats":
		st, err := store.Stats(ctx)
		if err != nil {
			slog.Error("stats", "error", err)
			break
		}
		fmt.Printf("sessions=%d words=%d speaking=%.0fwpm total=%s\n",
			st.Sessions, st.TotalWords, st.AvgWordsPerMinute, st.TotalDuration.Round(time.Second))
	case "quit", "exit":
		return true
	case "":
	default:
		fmt.Println("commands: start | stop | cancel | retry | stats | quit")
	}
	return false
}

// toggle starts or stops a recording depending on the current phase.
func toggle(ctx context.Context, uc *workflow.UseCase) {
	switch uc.RecordingState().Phase {
	case recorder.PhaseRecording:
		go func() {
			if err := uc.StopRecording(ctx); err != nil {
				slog.Error("stop recording", "error", err)
			}
		}()
	case recorder.PhaseIdle:
		go func() {
			if err := uc.StartRecording(ctx); err != nil {
				slog.Error("start recording", "error", err)
			}
		}()
	}
}

func printState(st workflow.State) {
	switch st.Phase {
	case workflow.PhaseProcessing:
		fmt.Printf("[%s %.0f%%]\n", st.Phase, st.Progress*100)
	case workflow.PhaseSuccess:
		fmt.Printf("[%s] %q inserted=%v\n", st.Phase, st.Transcription, st.TextInserted)
	case workflow.PhaseError:
		fmt.Printf("[%s] %s (retryable=%v)\n", st.Phase, workflow.Classify(st.Err).Message, st.Retryable)
	case workflow.PhasePermissionDenied:
		fmt.Printf("[%s] missing: %s\n", st.Phase, strings.Join(st.Denied, ", "))
	default:
		fmt.Printf("[%s]\n", st.Phase)
	}
}

func recorderCommand(cfg *config.Config) string {
	if cfg.RecorderCommand != "" {
		return cfg.RecorderCommand
	}
	return "ffmpeg"
}

// settingsTranscriber binds the remote client to the current settings.
type settingsTranscriber struct {
	client stt.Client
	cfg    *config.Config
}

func (t *settingsTranscriber) Transcribe(ctx context.Context, audio types.AudioFile) (string, error) {
	s := t.cfg.Settings
	res, err := t.client.Transcribe(ctx, audio, stt.Options{
		Model:       s.Model,
		Language:    s.Language,
		Prompt:      s.CustomPrompt,
		Temperature: s.Temperature,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

type configSettings struct{ cfg *config.Config }

func (c *configSettings) Settings() config.Settings { return c.cfg.Settings }

// desktopBinder treats the capture binary as the "background service".
type desktopBinder struct{ recorder string }

func (b *desktopBinder) BindServices(context.Context) error {
	if _, err := exec.LookPath(b.recorder); err != nil {
		return fmt.Errorf("recorder %q not found: %w", b.recorder, err)
	}
	return nil
}

func (b *desktopBinder) Readiness(context.Context) (types.ServiceReadiness, error) {
	_, err := exec.LookPath(b.recorder)
	return types.ServiceReadiness{
		ServiceConnected:   err == nil,
		PermissionsGranted: err == nil,
	}, nil
}

func (b *desktopBinder) Cleanup() {}

// desktopPermissions reports the external tools this process depends on.
type desktopPermissions struct {
	recorder string
	inserter insertion.Inserter
}

func (p *desktopPermissions) Check(context.Context) (readiness.PermissionResult, error) {
	var denied []string
	if _, err := exec.LookPath(p.recorder); err != nil {
		denied = append(denied, "microphone ("+p.recorder+")")
	}
	if !p.inserter.IsServiceAvailable() {
		denied = append(denied, "text insertion (wtype/ydotool/xdotool)")
	}
	if len(denied) > 0 {
		return readiness.PermissionResult{State: readiness.SomeDenied, Denied: denied}, nil
	}
	return readiness.PermissionResult{State: readiness.AllGranted}, nil
}

// consoleNotifier is the toast stand-in for the headless build.
type consoleNotifier struct{}

func (consoleNotifier) ShowToast(message string, _ bool) {
	fmt.Println(message)
}

func (consoleNotifier) ShowError(err error, origin string) {
	fmt.Printf("error (%s): %s\n", origin, workflow.Classify(err).Message)
}
