// Package stt provides the remote speech-to-text client interface and
// implementations.
package stt

import (
	"context"

	"github.com/shekohex/voicetype/internal/types"
)

// Options carries per-request transcription parameters taken from the user
// settings.
type Options struct {
	Model       string
	Language    string // empty or "auto" means auto-detect
	Prompt      string
	Temperature float64
}

// Result represents the outcome of a transcription request.
type Result struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Client transcribes finalized audio files via a remote service.
type Client interface {
	// IsConfigured reports whether the client has the credentials it
	// needs to issue requests.
	IsConfigured() bool

	// Transcribe uploads the audio file and returns the transcription.
	// Failures are classified into the types.TranscriptionError taxonomy
	// where possible.
	Transcribe(ctx context.Context, audio types.AudioFile, opts Options) (*Result, error)
}
