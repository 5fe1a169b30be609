package types

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a member of the closed transcription error taxonomy.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrAPIKeyMissing
	ErrServiceNotConfigured
	ErrAccessibilityNotEnabled
	ErrTextInsertionFailed
	ErrNetwork
	ErrAuthentication
	ErrRateLimited
)

// String returns the stable identifier of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrAPIKeyMissing:
		return "api_key_missing"
	case ErrServiceNotConfigured:
		return "service_not_configured"
	case ErrAccessibilityNotEnabled:
		return "accessibility_not_enabled"
	case ErrTextInsertionFailed:
		return "text_insertion_failed"
	case ErrNetwork:
		return "network"
	case ErrAuthentication:
		return "authentication"
	case ErrRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// TranscriptionError is a classified workflow error. It is immutable once
// constructed and carries enough context to decide retryability and render a
// user-facing message.
type TranscriptionError struct {
	Kind  ErrorKind
	Cause error

	// Transcription holds the text that could not be delivered when
	// Kind is ErrTextInsertionFailed.
	Transcription string
}

// NewTranscriptionError wraps cause with a taxonomy kind. Cause may be nil.
func NewTranscriptionError(kind ErrorKind, cause error) *TranscriptionError {
	return &TranscriptionError{Kind: kind, Cause: cause}
}

// NewTextInsertionFailed records a soft insertion failure, retaining the
// transcription so it is not lost with the error.
func NewTextInsertionFailed(transcription string) *TranscriptionError {
	return &TranscriptionError{Kind: ErrTextInsertionFailed, Transcription: transcription}
}

func (e *TranscriptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *TranscriptionError) Unwrap() error { return e.Cause }

// Retryable reports whether re-invoking the failed operation after a delay
// may succeed. Unknown kinds are conservatively not retryable.
func (e *TranscriptionError) Retryable() bool {
	switch e.Kind {
	case ErrAPIKeyMissing, ErrServiceNotConfigured, ErrNetwork, ErrRateLimited:
		return true
	default:
		return false
	}
}

// AsTranscriptionError unwraps err to a TranscriptionError if one is in its
// chain.
func AsTranscriptionError(err error) (*TranscriptionError, bool) {
	var te *TranscriptionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
