// Package clock provides the engine clock used to timestamp recorded input
// and to schedule playback.
//
// The engine only ever asks for elapsed time. Virtual time advances with the
// wall clock while running and stands still while paused, so a paused host
// does not shift the replay timeline.
package clock

import (
	"sync"
	"time"
)

// Clock reports the elapsed engine time.
// This interface allows time to be driven explicitly in tests.
type Clock interface {
	Elapsed() time.Duration
}

// Virtual is a pausable clock that scales wall time by a relative speed.
type Virtual struct {
	mu      sync.Mutex
	now     func() time.Time
	last    time.Time
	elapsed time.Duration
	speed   float64
	paused  bool
}

// VirtualOption configures a Virtual clock.
type VirtualOption func(*Virtual)

// WithSource replaces the wall clock, mostly for tests.
func WithSource(now func() time.Time) VirtualOption {
	return func(v *Virtual) {
		v.now = now
	}
}

// WithSpeed sets the initial relative speed.
func WithSpeed(speed float64) VirtualOption {
	return func(v *Virtual) {
		if speed > 0 {
			v.speed = speed
		}
	}
}

// NewVirtual creates a running virtual clock starting at zero.
func NewVirtual(opts ...VirtualOption) *Virtual {
	v := &Virtual{
		now:   time.Now,
		speed: 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.last = v.now()
	return v
}

// advanceLocked folds wall time since the last sample into elapsed.
func (v *Virtual) advanceLocked() {
	t := v.now()
	if !v.paused {
		delta := t.Sub(v.last)
		if delta > 0 {
			v.elapsed += time.Duration(float64(delta) * v.speed)
		}
	}
	v.last = t
}

// Elapsed returns the virtual time since the clock was created.
func (v *Virtual) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advanceLocked()
	return v.elapsed
}

// Pause stops virtual time. Pausing a paused clock is a no-op.
func (v *Virtual) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advanceLocked()
	v.paused = true
}

// Resume restarts virtual time from where it was paused.
func (v *Virtual) Resume() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advanceLocked()
	v.paused = false
}

// Toggle flips between paused and running and returns the new paused state.
func (v *Virtual) Toggle() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advanceLocked()
	v.paused = !v.paused
	return v.paused
}

// Paused reports whether the clock is paused.
func (v *Virtual) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

// SetRelativeSpeed changes how fast virtual time runs relative to wall time.
// Non-positive speeds are ignored.
func (v *Virtual) SetRelativeSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advanceLocked()
	v.speed = speed
}

// RelativeSpeed returns the current speed factor.
func (v *Virtual) RelativeSpeed() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speed
}

// Manual is a clock that only moves when told to.
type Manual struct {
	mu      sync.Mutex
	elapsed time.Duration
}

// NewManual creates a manual clock at the given elapsed time.
func NewManual(start time.Duration) *Manual {
	return &Manual{elapsed: start}
}

// Elapsed returns the current time.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// Set moves the clock to d.
func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed = d
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elapsed += d
}
