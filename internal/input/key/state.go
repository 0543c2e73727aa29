package key

import (
	"slices"
)

// State is the live keyboard state for one host.
//
// It tracks which keys are held and which keys changed during the current
// tick. The just lists keep arrival order. State is not safe for concurrent
// use; hosts mutate it from the tick goroutine only.
type State struct {
	pressed      map[Key]struct{}
	justPressed  []Key
	justReleased []Key
}

// NewState creates an empty keyboard state.
func NewState() *State {
	return &State{
		pressed: make(map[Key]struct{}),
	}
}

// Press marks k as held. A key that is already held is not pressed again.
// Each key appears at most once in the just-pressed list of a tick.
func (s *State) Press(k Key) {
	if _, ok := s.pressed[k]; ok {
		return
	}
	s.pressed[k] = struct{}{}
	if !slices.Contains(s.justPressed, k) {
		s.justPressed = append(s.justPressed, k)
	}
}

// Release marks k as no longer held. Releasing a key that is not held is a
// no-op. Each key appears at most once in the just-released list of a tick.
func (s *State) Release(k Key) {
	if _, ok := s.pressed[k]; !ok {
		return
	}
	delete(s.pressed, k)
	if !slices.Contains(s.justReleased, k) {
		s.justReleased = append(s.justReleased, k)
	}
}

// Apply folds a raw host event into the state.
func (s *State) Apply(ev Event) {
	if ev.IsDown() {
		s.Press(ev.Key)
		return
	}
	s.Release(ev.Key)
}

// Pressed reports whether k is currently held.
func (s *State) Pressed(k Key) bool {
	_, ok := s.pressed[k]
	return ok
}

// PressedKeys returns the held keys in code order.
func (s *State) PressedKeys() []Key {
	keys := make([]Key, 0, len(s.pressed))
	for k := range s.pressed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// JustPressed returns the keys pressed during the current tick.
func (s *State) JustPressed() []Key {
	return slices.Clone(s.justPressed)
}

// JustReleased returns the keys released during the current tick.
func (s *State) JustReleased() []Key {
	return slices.Clone(s.justReleased)
}

// IsJustPressed reports whether k was pressed during the current tick.
func (s *State) IsJustPressed(k Key) bool {
	return slices.Contains(s.justPressed, k)
}

// IsJustReleased reports whether k was released during the current tick.
func (s *State) IsJustReleased(k Key) bool {
	return slices.Contains(s.justReleased, k)
}

// ConsumePressed removes k from the just-pressed list so later readers in
// the same tick do not see it. Returns whether k was present.
func (s *State) ConsumePressed(k Key) bool {
	i := slices.Index(s.justPressed, k)
	if i < 0 {
		return false
	}
	s.justPressed = slices.Delete(s.justPressed, i, i+1)
	return true
}

// ConsumeReleased removes k from the just-released list. Returns whether k
// was present.
func (s *State) ConsumeReleased(k Key) bool {
	i := slices.Index(s.justReleased, k)
	if i < 0 {
		return false
	}
	s.justReleased = slices.Delete(s.justReleased, i, i+1)
	return true
}

// Changed reports whether any key changed during the current tick.
func (s *State) Changed() bool {
	return len(s.justPressed) > 0 || len(s.justReleased) > 0
}

// EndTick clears the per-tick lists. Held keys stay held.
func (s *State) EndTick() {
	s.justPressed = s.justPressed[:0]
	s.justReleased = s.justReleased[:0]
}

// ReleaseAll releases every held key, in code order.
func (s *State) ReleaseAll() {
	for _, k := range s.PressedKeys() {
		s.Release(k)
	}
}

// Reset clears all state, including held keys, without reporting releases.
func (s *State) Reset() {
	clear(s.pressed)
	s.EndTick()
}
