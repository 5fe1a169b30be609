package recorder

import (
	"time"

	"github.com/shekohex/voicetype/internal/types"
)

// Phase enumerates the recording lifecycle. Transitions are linear:
// Idle → Recording → Processing → (Success | Error); Success and Error are
// terminal until an explicit reset.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseProcessing
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRecording:
		return "recording"
	case PhaseProcessing:
		return "processing"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the broadcast recording state. Only the fields belonging to the
// current phase are populated.
type State struct {
	Phase Phase

	StartedAt time.Time // Recording
	Progress  float64   // Processing, 0..1

	Audio         *types.AudioFile // Success
	Transcription string           // Success

	Err       error // Error
	Retryable bool  // Error
}

// Terminal reports whether the state requires an explicit reset before a new
// recording can start.
func (s State) Terminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseError
}
