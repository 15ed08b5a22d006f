package session

import (
	"testing"

	"github.com/gdhanush27/Form-Pulse/internal/model"
)

func newTestMonitor() (*Monitor, *[]model.ViolationKind, *int) {
	var violations []model.ViolationKind
	var exits int
	m := NewMonitor(
		func(kind model.ViolationKind) { violations = append(violations, kind) },
		func() { exits++ },
	)
	return m, &violations, &exits
}

func TestMonitorInactiveIgnoresSignals(t *testing.T) {
	m, violations, exits := newTestMonitor()

	m.VisibilityChanged(true)
	m.FullscreenChanged(false)

	if len(*violations) != 0 {
		t.Errorf("violations before Start() = %d, want 0", len(*violations))
	}
	if *exits != 0 {
		t.Errorf("fullscreen exits before Start() = %d, want 0", *exits)
	}
}

func TestMonitorHiddenFiresTabSwitch(t *testing.T) {
	m, violations, _ := newTestMonitor()
	m.Start()

	m.VisibilityChanged(true)
	m.VisibilityChanged(false)
	m.VisibilityChanged(true)

	if len(*violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(*violations))
	}
	for _, kind := range *violations {
		if kind != model.ViolationTabSwitch {
			t.Errorf("violation kind = %s, want %s", kind, model.ViolationTabSwitch)
		}
	}
}

func TestMonitorFullscreenExitDoesNotViolate(t *testing.T) {
	m, violations, exits := newTestMonitor()
	m.Start()

	m.FullscreenChanged(false)
	m.FullscreenChanged(true)
	m.FullscreenChanged(false)

	if len(*violations) != 0 {
		t.Errorf("violations = %d, want 0", len(*violations))
	}
	if *exits != 2 {
		t.Errorf("fullscreen exits = %d, want 2", *exits)
	}
}

func TestMonitorStopSilences(t *testing.T) {
	m, violations, exits := newTestMonitor()
	m.Start()
	m.Stop()

	m.VisibilityChanged(true)
	m.FullscreenChanged(false)

	if len(*violations) != 0 || *exits != 0 {
		t.Errorf("signals after Stop(): violations=%d exits=%d, want 0/0", len(*violations), *exits)
	}
}

func TestMonitorStartIdempotent(t *testing.T) {
	m, violations, _ := newTestMonitor()
	m.Start()
	m.Start()

	m.VisibilityChanged(true)

	if len(*violations) != 1 {
		t.Errorf("violations = %d, want 1", len(*violations))
	}
}
