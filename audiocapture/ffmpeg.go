package audiocapture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/shekohex/voicetype/internal/types"
)

const wavHeaderSize = 44

var (
	ErrAlreadyRecording = errors.New("audio capture already running")
	ErrNoRecording      = errors.New("no audio capture in progress")
)

// FFmpeg records microphone audio to a WAV file using an external ffmpeg
// process.
type FFmpeg struct {
	cfg Config

	mu      sync.Mutex
	cmd     *exec.Cmd
	path    string
	stderr  *bytes.Buffer
	waitErr chan error
}

// NewFFmpeg creates a file-based capturer. Zero-value config fields use the
// platform defaults.
func NewFFmpeg(cfg Config) *FFmpeg {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return &FFmpeg{cfg: cfg}
}

// Start launches the recorder process.
func (f *FFmpeg) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cmd != nil {
		return ErrAlreadyRecording
	}

	path := filepath.Join(f.cfg.Dir, fmt.Sprintf("rec-%d.wav", time.Now().UnixNano()))
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", f.cfg.InputFormat,
		"-i", f.cfg.InputDevice,
		"-ac", strconv.Itoa(f.cfg.Channels),
		"-ar", strconv.Itoa(f.cfg.SampleRate),
		"-y", path,
	}

	cmd := exec.CommandContext(ctx, f.cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", f.cfg.Command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	f.cmd = cmd
	f.path = path
	f.stderr = &stderr
	f.waitErr = waitErr
	return nil
}

// Stop signals the recorder to finalize the file and returns its metadata.
func (f *FFmpeg) Stop(ctx context.Context) (types.AudioFile, error) {
	f.mu.Lock()
	cmd, path, stderr, waitErr := f.cmd, f.path, f.stderr, f.waitErr
	f.cmd, f.path, f.stderr, f.waitErr = nil, "", nil, nil
	f.mu.Unlock()

	if cmd == nil {
		return types.AudioFile{}, ErrNoRecording
	}

	// SIGINT lets ffmpeg flush the WAV header.
	_ = cmd.Process.Signal(os.Interrupt)

	select {
	case err := <-waitErr:
		// ffmpeg exits non-zero on SIGINT; the file is still valid.
		_ = err
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-waitErr
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitErr
		_ = os.Remove(path)
		return types.AudioFile{}, ctx.Err()
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.AudioFile{}, fmt.Errorf("finalize recording: %w: %s", err, stderr.String())
	}
	if info.Size() <= wavHeaderSize {
		_ = os.Remove(path)
		return types.AudioFile{}, fmt.Errorf("recording produced no audio: %s", stderr.String())
	}

	return types.AudioFile{
		Path:      path,
		SizeBytes: info.Size(),
		Duration:  wavDuration(info.Size(), f.cfg.SampleRate, f.cfg.Channels),
	}, nil
}

// Cancel kills any in-flight recorder process and removes the partial file.
// It returns once the process has exited and the file is gone.
func (f *FFmpeg) Cancel() error {
	f.mu.Lock()
	cmd, path, waitErr := f.cmd, f.path, f.waitErr
	f.cmd, f.path, f.stderr, f.waitErr = nil, "", nil, nil
	f.mu.Unlock()

	if cmd == nil {
		return nil
	}

	_ = cmd.Process.Kill()
	<-waitErr
	if path != "" {
		_ = os.Remove(path)
	}
	return nil
}

// wavDuration derives the recording length from the PCM payload size.
func wavDuration(size int64, sampleRate, channels int) time.Duration {
	payload := size - wavHeaderSize
	if payload <= 0 {
		return 0
	}
	bytesPerSecond := int64(sampleRate * channels * 2) // s16le
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(payload) * time.Second / time.Duration(bytesPerSecond)
}
