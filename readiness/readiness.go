// Package readiness establishes that the background capture service is bound
// and the required permissions are granted before a workflow starts.
package readiness

import (
	"context"
	"fmt"

	"github.com/shekohex/voicetype/internal/types"
)

// PermissionState classifies the outcome of a permission check.
type PermissionState int

const (
	AllGranted PermissionState = iota
	SomeDenied
	ShowRationale
)

func (s PermissionState) String() string {
	switch s {
	case AllGranted:
		return "all_granted"
	case SomeDenied:
		return "some_denied"
	case ShowRationale:
		return "show_rationale"
	default:
		return "unknown"
	}
}

// PermissionResult names the permissions still missing when State is not
// AllGranted.
type PermissionResult struct {
	State  PermissionState
	Denied []string
}

// Binder manages the lifecycle of the background capture service.
type Binder interface {
	BindServices(ctx context.Context) error
	Readiness(ctx context.Context) (types.ServiceReadiness, error)
	Cleanup()
}

// PermissionChecker reports the current permission grants.
type PermissionChecker interface {
	Check(ctx context.Context) (PermissionResult, error)
}

// Outcome is the combined readiness decision consumed at workflow start.
type Outcome struct {
	Ready  bool
	Denied []string
}

// Initializer composes service binding and permission checks into the single
// readiness decision consumed at workflow start.
type Initializer struct {
	binder Binder
	perms  PermissionChecker
}

func NewInitializer(binder Binder, perms PermissionChecker) *Initializer {
	return &Initializer{binder: binder, perms: perms}
}

// EnsureReady binds the capture service and checks permissions. A binding
// failure is classified as ServiceNotConfigured; missing permissions yield a
// non-ready outcome listing them.
func (i *Initializer) EnsureReady(ctx context.Context) (Outcome, error) {
	if err := i.binder.BindServices(ctx); err != nil {
		return Outcome{}, types.NewTranscriptionError(types.ErrServiceNotConfigured, err)
	}

	res, err := i.perms.Check(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("check permissions: %w", err)
	}
	if res.State != AllGranted {
		return Outcome{Denied: res.Denied}, nil
	}
	return Outcome{Ready: true}, nil
}

// Readiness passes through the binder's current service readiness.
func (i *Initializer) Readiness(ctx context.Context) (types.ServiceReadiness, error) {
	return i.binder.Readiness(ctx)
}

// Cleanup releases the service binding. Safe to call multiple times.
func (i *Initializer) Cleanup() { i.binder.Cleanup() }
