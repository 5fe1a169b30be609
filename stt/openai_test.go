package stt

import (
	"net/http"
	"testing"

	"github.com/shekohex/voicetype/internal/types"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   types.ErrorKind
	}{
		{http.StatusUnauthorized, types.ErrAuthentication},
		{http.StatusForbidden, types.ErrAuthentication},
		{http.StatusTooManyRequests, types.ErrRateLimited},
		{http.StatusInternalServerError, types.ErrNetwork},
		{http.StatusBadGateway, types.ErrNetwork},
	}
	for _, tt := range tests {
		if got := kindForStatus(tt.status); got != tt.want {
			t.Errorf("kindForStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestIsConfigured(t *testing.T) {
	c := NewOpenAI("", "")
	if c.IsConfigured() {
		t.Error("blank key should not be configured")
	}

	c.UpdateCredentials("sk-test", "")
	if !c.IsConfigured() {
		t.Error("expected configured after credentials update")
	}

	c.UpdateCredentials("   ", "")
	if c.IsConfigured() {
		t.Error("whitespace key should not be configured")
	}
}
