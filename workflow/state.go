package workflow

// Phase enumerates the orchestrator states observable by the presentation
// layer. Success and Error are terminal until an explicit reset.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseServiceReady
	PhasePermissionDenied
	PhaseRecording
	PhaseProcessing
	PhaseInsertingText
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseServiceReady:
		return "service_ready"
	case PhasePermissionDenied:
		return "permission_denied"
	case PhaseRecording:
		return "recording"
	case PhaseProcessing:
		return "processing"
	case PhaseInsertingText:
		return "inserting_text"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the workflow state signal payload, the only state the outside
// world observes. Only the fields belonging to the current phase are
// populated.
type State struct {
	Phase Phase

	Denied   []string // PermissionDenied
	Progress float64  // Processing, 0..1

	Transcription string // Success
	TextInserted  bool   // Success

	Err       error // Error
	Retryable bool  // Error
}
