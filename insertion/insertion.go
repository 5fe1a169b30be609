// Package insertion delivers transcribed text into the foreground
// application.
package insertion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/shekohex/voicetype/internal/types"
)

// Inserter delivers text to the foreground application. InsertText returns
// false with a nil error when the backend ran but did not deliver the text
// (soft failure); an error means the backend itself could not run.
type Inserter interface {
	IsServiceAvailable() bool
	InsertText(ctx context.Context, text string) (bool, error)
}

// typingTool describes one supported external typing backend.
type typingTool struct {
	name string
	args func(text string) []string
}

var typingTools = []typingTool{
	{"wtype", func(text string) []string { return []string{"--", text} }},
	{"ydotool", func(text string) []string { return []string{"type", "--", text} }},
	{"xdotool", func(text string) []string { return []string{"type", "--clearmodifiers", "--", text} }},
}

// Typer shells out to the first typing tool found on PATH.
type Typer struct {
	command string
	args    func(text string) []string
}

// NewTyper probes PATH for a supported typing tool. The returned Typer
// reports unavailable when none is installed.
func NewTyper() *Typer {
	for _, tool := range typingTools {
		if _, err := exec.LookPath(tool.name); err == nil {
			slog.Info("text insertion backend selected", "tool", tool.name)
			return &Typer{command: tool.name, args: tool.args}
		}
	}
	slog.Warn("no typing tool found on PATH")
	return &Typer{}
}

// NewTyperCommand forces a specific typing tool, e.g. from configuration.
func NewTyperCommand(command string) *Typer {
	for _, tool := range typingTools {
		if tool.name == command {
			return &Typer{command: command, args: tool.args}
		}
	}
	// Unknown tool: assume it accepts the text as its only argument.
	return &Typer{command: command, args: func(text string) []string { return []string{text} }}
}

func (t *Typer) IsServiceAvailable() bool { return t.command != "" }

// InsertText types text into the focused window. A non-zero exit from the
// tool is a soft failure; a failure to launch it is an error.
func (t *Typer) InsertText(ctx context.Context, text string) (bool, error) {
	if t.command == "" {
		return false, types.NewTranscriptionError(types.ErrAccessibilityNotEnabled, nil)
	}

	cmd := exec.CommandContext(ctx, t.command, t.args(text)...)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			slog.Warn("typing tool exited non-zero", "tool", t.command, "code", exitErr.ExitCode())
			return false, nil
		}
		return false, fmt.Errorf("run %s: %w", t.command, err)
	}
	return true, nil
}
