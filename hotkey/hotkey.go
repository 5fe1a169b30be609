// Package hotkey registers the global push-to-talk shortcut.
package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Combo is the default toggle shortcut.
var Combo = []string{"ctrl", "shift", "space"}

// Manager owns the global keyboard hook. The toggle callback fires every
// time the shortcut is pressed.
type Manager struct {
	toggle func()

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewManager creates a hotkey manager; call Start to install the hook.
func NewManager(toggle func()) *Manager {
	return &Manager{toggle: toggle}
}

// Start installs the global hook. Only one hook may run per process.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	hook.Register(hook.KeyDown, Combo, func(e hook.Event) {
		m.toggle()
	})

	events := hook.Start()
	m.done = make(chan struct{})
	go func(done chan struct{}) {
		<-hook.Process(events)
		close(done)
	}(m.done)

	m.running = true
	slog.Info("global hotkey registered", "combo", "ctrl+shift+space")
	return nil
}

// Stop removes the hook and waits for the event loop to exit. Safe to call
// when not running.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}

	hook.End()
	<-m.done
	m.running = false
	slog.Info("global hotkey removed")
}
