package workflow

import "github.com/shekohex/voicetype/internal/types"

// Classification is the user-facing rendering of a workflow error.
type Classification struct {
	Message   string
	Retryable bool
}

// Classify maps any error onto a stable user message and retryability flag.
// Errors outside the taxonomy fall back to a generic, non-retryable
// classification.
func Classify(err error) Classification {
	te, ok := types.AsTranscriptionError(err)
	if !ok {
		return Classification{
			Message:   "Something went wrong. Please try again.",
			Retryable: false,
		}
	}
	return Classification{
		Message:   messageFor(te.Kind),
		Retryable: te.Retryable(),
	}
}

func messageFor(kind types.ErrorKind) string {
	switch kind {
	case types.ErrAPIKeyMissing:
		return "API key is missing. Add it in settings and retry."
	case types.ErrServiceNotConfigured:
		return "Transcription service is not ready. Retry in a moment."
	case types.ErrAccessibilityNotEnabled:
		return "Text insertion is unavailable. Enable the accessibility service."
	case types.ErrTextInsertionFailed:
		return "Transcription succeeded but the text could not be inserted."
	case types.ErrNetwork:
		return "Network error. Check your connection and try again."
	case types.ErrAuthentication:
		return "Authentication failed. Check your API key."
	case types.ErrRateLimited:
		return "The transcription service is rate limiting requests. Try again shortly."
	default:
		return "Something went wrong. Please try again."
	}
}
