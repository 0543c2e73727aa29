package key

import (
	"slices"
	"testing"
)

func TestStatePressRelease(t *testing.T) {
	s := NewState()
	s.Press(KeyA)
	s.Press(KeyA)
	s.Press(KeyB)

	if !s.Pressed(KeyA) || !s.Pressed(KeyB) {
		t.Fatal("A and B should be held")
	}
	if got := s.JustPressed(); !slices.Equal(got, []Key{KeyA, KeyB}) {
		t.Errorf("JustPressed() = %v, want [A B]", got)
	}

	s.EndTick()
	if s.Changed() {
		t.Error("Changed() after EndTick = true")
	}
	if !s.Pressed(KeyA) {
		t.Error("EndTick should keep held keys")
	}

	s.Release(KeyA)
	s.Release(KeyC)
	if s.Pressed(KeyA) {
		t.Error("A should be released")
	}
	if got := s.JustReleased(); !slices.Equal(got, []Key{KeyA}) {
		t.Errorf("JustReleased() = %v, want [A]", got)
	}
}

func TestStatePressAndReleaseSameTick(t *testing.T) {
	s := NewState()
	s.Apply(PressEvent(KeySpace))
	s.Apply(ReleaseEvent(KeySpace))

	if s.Pressed(KeySpace) {
		t.Error("Space should not be held")
	}
	if !s.IsJustPressed(KeySpace) || !s.IsJustReleased(KeySpace) {
		t.Error("Space should be both just pressed and just released")
	}
}

func TestStateRepeatedEdgesListedOnce(t *testing.T) {
	s := NewState()
	s.Press(KeyA)
	s.Release(KeyA)
	s.Press(KeyA)
	s.Release(KeyA)
	s.Press(KeyA)

	if !s.Pressed(KeyA) {
		t.Error("A should be held after the last press")
	}
	if got := s.JustPressed(); !slices.Equal(got, []Key{KeyA}) {
		t.Errorf("JustPressed() = %v, want [A]", got)
	}
	if got := s.JustReleased(); !slices.Equal(got, []Key{KeyA}) {
		t.Errorf("JustReleased() = %v, want [A]", got)
	}
}

func TestStateConsume(t *testing.T) {
	s := NewState()
	s.Press(KeyF12)
	s.Press(KeyW)

	if !s.ConsumePressed(KeyF12) {
		t.Error("ConsumePressed(F12) = false, want true")
	}
	if s.ConsumePressed(KeyF12) {
		t.Error("second ConsumePressed(F12) = true, want false")
	}
	if got := s.JustPressed(); !slices.Equal(got, []Key{KeyW}) {
		t.Errorf("JustPressed() = %v, want [W]", got)
	}
	if !s.Pressed(KeyF12) {
		t.Error("consuming should not release the key")
	}

	s.EndTick()
	s.Release(KeyF12)
	if !s.ConsumeReleased(KeyF12) {
		t.Error("ConsumeReleased(F12) = false, want true")
	}
	if s.Changed() {
		t.Error("Changed() = true after consuming the only release")
	}
}

func TestStateReleaseAllAndReset(t *testing.T) {
	s := NewState()
	s.Press(KeyD)
	s.Press(KeyB)
	s.EndTick()

	s.ReleaseAll()
	if got := s.JustReleased(); !slices.Equal(got, []Key{KeyB, KeyD}) {
		t.Errorf("JustReleased() = %v, want [B D]", got)
	}

	s.Press(KeyE)
	s.Reset()
	if len(s.PressedKeys()) != 0 || s.Changed() {
		t.Error("Reset should clear everything")
	}
}

func TestStateJustListsAreCopies(t *testing.T) {
	s := NewState()
	s.Press(KeyA)
	got := s.JustPressed()
	got[0] = KeyZ
	if !s.IsJustPressed(KeyA) {
		t.Error("mutating the returned slice changed the state")
	}
}
