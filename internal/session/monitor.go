package session

import (
	"sync"

	"github.com/gdhanush27/Form-Pulse/internal/model"
)

// Monitor translates the two raw platform signals (document visibility,
// fullscreen state) into integrity callbacks. It holds no session state of
// its own: the violation counter lives in the controller. It is active only
// between entry to IN_PROGRESS and SUBMITTED; Start and Stop are idempotent
// so reconnecting clients never double-register.
type Monitor struct {
	mu     sync.Mutex
	active bool

	onViolation      func(model.ViolationKind)
	onFullscreenExit func()
}

// NewMonitor wires the monitor to its two callbacks.
func NewMonitor(onViolation func(model.ViolationKind), onFullscreenExit func()) *Monitor {
	return &Monitor{
		onViolation:      onViolation,
		onFullscreenExit: onFullscreenExit,
	}
}

// Start begins monitoring. No-op when already started.
func (m *Monitor) Start() {
	m.mu.Lock()
	m.active = true
	m.mu.Unlock()
}

// Stop tears monitoring down permanently. No violations can be reported
// afterwards.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// VisibilityChanged handles a document-visibility transition. Every
// transition to hidden while active is exactly one TAB_SWITCH violation;
// rapid hide/show cycles each count, there is no debounce.
func (m *Monitor) VisibilityChanged(hidden bool) {
	if !hidden {
		return
	}
	if !m.isActive() {
		return
	}
	m.onViolation(model.ViolationTabSwitch)
}

// FullscreenChanged handles a fullscreen transition. Exiting fullscreen
// never increments the violation counter; it only triggers the blocking
// re-enter gate.
func (m *Monitor) FullscreenChanged(active bool) {
	if active {
		return
	}
	if !m.isActive() {
		return
	}
	m.onFullscreenExit()
}

func (m *Monitor) isActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
