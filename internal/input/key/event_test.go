package key

import (
	"testing"
)

func TestActionString(t *testing.T) {
	if Down.String() != "down" || Up.String() != "up" {
		t.Errorf("Action strings = %q, %q", Down, Up)
	}
	if got := Action(7).String(); got != "Action(7)" {
		t.Errorf("Action(7).String() = %q", got)
	}
}

func TestEventConstructors(t *testing.T) {
	down := PressEvent(KeyA)
	if !down.IsDown() || down.Key != KeyA {
		t.Errorf("PressEvent(A) = %+v", down)
	}
	if down.Timestamp.IsZero() {
		t.Error("PressEvent should set a timestamp")
	}

	up := ReleaseEvent(KeyA)
	if up.IsDown() {
		t.Error("ReleaseEvent(A).IsDown() = true")
	}
	if down.Equals(up) {
		t.Error("press and release should not be equal")
	}
	if !up.Equals(Event{Key: KeyA, Action: Up}) {
		t.Error("Equals should ignore timestamps")
	}
}

func TestEventString(t *testing.T) {
	if got := PressEvent(KeyF12).String(); got != "F12 down" {
		t.Errorf("String() = %q, want %q", got, "F12 down")
	}
}
