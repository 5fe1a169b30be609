package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shekohex/voicetype/internal/types"
)

func TestClassifyTaxonomy(t *testing.T) {
	tests := []struct {
		kind          types.ErrorKind
		wantRetryable bool
	}{
		{types.ErrAPIKeyMissing, true},
		{types.ErrServiceNotConfigured, true},
		{types.ErrAccessibilityNotEnabled, false},
		{types.ErrTextInsertionFailed, false},
		{types.ErrNetwork, true},
		{types.ErrAuthentication, false},
		{types.ErrRateLimited, true},
		{types.ErrUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			cls := Classify(types.NewTranscriptionError(tt.kind, nil))
			if cls.Retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", cls.Retryable, tt.wantRetryable)
			}
			if cls.Message == "" {
				t.Error("classification must carry a user message")
			}
		})
	}
}

func TestClassifyFallbackIsConservative(t *testing.T) {
	cls := Classify(errors.New("disk exploded"))
	if cls.Retryable {
		t.Error("unclassified errors must not be retryable")
	}
	if cls.Message == "" {
		t.Error("fallback must carry a generic message")
	}
}

func TestClassifyUnwrapsWrappedTaxonomyErrors(t *testing.T) {
	inner := types.NewTranscriptionError(types.ErrRateLimited, nil)
	wrapped := fmt.Errorf("transcribe: %w", inner)

	cls := Classify(wrapped)
	if !cls.Retryable {
		t.Error("wrapped rate-limit error should classify as retryable")
	}
}
