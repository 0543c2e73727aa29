package autoplay

import (
	"fmt"
	"slices"
	"time"
)

// Entry is one batch of transitions recorded in a single tick.
type Entry struct {
	// Offset is the time since the run started.
	Offset time.Duration

	// Transitions are applied in order during playback.
	Transitions []Transition
}

// NewEntry creates an entry from the given transitions.
func NewEntry(offset time.Duration, transitions ...Transition) Entry {
	return Entry{Offset: offset, Transitions: transitions}
}

// Equal reports whether two entries have the same offset and transitions.
func (e Entry) Equal(other Entry) bool {
	return e.Offset == other.Offset && slices.Equal(e.Transitions, other.Transitions)
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	return Entry{Offset: e.Offset, Transitions: slices.Clone(e.Transitions)}
}

// Session is a FIFO queue of entries ordered by non-decreasing offset.
//
// A Session is owned by one engine and is only touched from the tick
// goroutine, so it carries no lock.
type Session struct {
	entries []Entry
}

// NewSession creates a session holding the given entries.
func NewSession(entries ...Entry) *Session {
	s := &Session{}
	for _, e := range entries {
		s.PushBack(e)
	}
	return s
}

// Clear empties the queue.
func (s *Session) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

// PushBack appends an entry. The caller keeps offsets non-decreasing.
func (s *Session) PushBack(e Entry) {
	s.entries = append(s.entries, e)
}

// PopFront removes and returns the earliest entry.
func (s *Session) PopFront() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	e := s.entries[0]
	s.entries[0] = Entry{}
	s.entries = s.entries[1:]
	return e, true
}

// Front returns the earliest entry without removing it.
func (s *Session) Front() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[0], true
}

// Len returns the number of queued entries.
func (s *Session) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether the queue is empty.
func (s *Session) IsEmpty() bool {
	return len(s.entries) == 0
}

// Entries returns a deep copy of the queued entries.
func (s *Session) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Duration returns the offset of the last entry.
func (s *Session) Duration() time.Duration {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[len(s.entries)-1].Offset
}

// TransitionCount returns the number of transitions across all entries.
func (s *Session) TransitionCount() int {
	n := 0
	for _, e := range s.entries {
		n += len(e.Transitions)
	}
	return n
}

// Replace swaps the queue contents for other's.
func (s *Session) Replace(other *Session) {
	s.entries = other.entries
	other.entries = nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	return &Session{entries: s.Entries()}
}

// Equal reports whether two sessions hold equal entries in the same order.
func (s *Session) Equal(other *Session) bool {
	return slices.EqualFunc(s.entries, other.entries, Entry.Equal)
}

// Validate checks the ordering and content invariants.
func (s *Session) Validate() error {
	var prev time.Duration
	for i, e := range s.entries {
		if e.Offset < 0 {
			return fmt.Errorf("entry %d: negative offset %v: %w", i, e.Offset, ErrOutOfOrder)
		}
		if e.Offset < prev {
			return fmt.Errorf("entry %d: offset %v before %v: %w", i, e.Offset, prev, ErrOutOfOrder)
		}
		if len(e.Transitions) == 0 {
			return fmt.Errorf("entry %d: %w", i, ErrEmptyEntry)
		}
		for j, t := range e.Transitions {
			if t.Edge != EdgePress && t.Edge != EdgeRelease {
				return fmt.Errorf("entry %d transition %d: %w: %d", i, j, ErrUnknownTag, t.Edge)
			}
			if !t.Key.Valid() {
				return fmt.Errorf("entry %d transition %d: %w: %d", i, j, ErrUnknownKey, uint16(t.Key))
			}
		}
		prev = e.Offset
	}
	return nil
}
