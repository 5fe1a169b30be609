// Package audiocapture records microphone audio to disk.
package audiocapture

import (
	"context"

	"github.com/shekohex/voicetype/internal/types"
)

// Capturer owns at most one in-flight recording and produces a finalized
// audio file on stop. Cancel must release the underlying audio resource
// synchronously before returning.
type Capturer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (types.AudioFile, error)
	Cancel() error
}

// Config describes how the microphone should be captured.
type Config struct {
	Command     string // recorder binary, default "ffmpeg"
	Dir         string // output directory, default os.TempDir()
	SampleRate  int    // default 16000
	Channels    int    // default 1
	InputFormat string // ffmpeg input format, default "pulse"
	InputDevice string // default "default"
}
