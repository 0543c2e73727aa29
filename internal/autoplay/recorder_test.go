package autoplay

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/autoplay/internal/input/key"
)

func TestRecorderEnterClears(t *testing.T) {
	ctx := NewContext()
	ctx.Session = sampleSession()

	r := NewRecorder(zerolog.Nop(), nil)
	r.Enter(ctx, 3*time.Second)

	assert.True(t, ctx.Session.IsEmpty())
	assert.Equal(t, 3*time.Second, ctx.StartTime)
}

func TestRecorderTick(t *testing.T) {
	ctx := NewContext()
	r := NewRecorder(zerolog.Nop(), nil)
	r.Enter(ctx, time.Second)

	st := key.NewState()

	// Idle tick.
	assert.False(t, r.Tick(ctx, time.Second, st))
	assert.True(t, ctx.Session.IsEmpty())

	st.Press(key.KeyA)
	st.Press(key.KeyB)
	require.True(t, r.Tick(ctx, 1500*time.Millisecond, st))
	st.EndTick()

	// Held keys alone do not record anything.
	assert.False(t, r.Tick(ctx, 1600*time.Millisecond, st))

	st.Release(key.KeyA)
	st.Press(key.KeyC)
	require.True(t, r.Tick(ctx, 2*time.Second, st))
	st.EndTick()

	want := NewSession(
		NewEntry(500*time.Millisecond, Press(key.KeyA), Press(key.KeyB)),
		NewEntry(time.Second, Press(key.KeyC), Release(key.KeyA)),
	)
	assert.True(t, want.Equal(ctx.Session), "got %v", ctx.Session.Entries())
}

func TestRecorderSameTickEdges(t *testing.T) {
	tests := []struct {
		name  string
		held  bool // A is down before the tick
		edges func(*key.State)
		want  []Transition
		down  bool // A is down after replaying the entry
	}{
		{
			name:  "tap",
			edges: func(s *key.State) { s.Press(key.KeyA); s.Release(key.KeyA) },
			want:  []Transition{Press(key.KeyA), Release(key.KeyA)},
		},
		{
			name:  "tap then press",
			edges: func(s *key.State) { s.Press(key.KeyA); s.Release(key.KeyA); s.Press(key.KeyA) },
			want:  []Transition{Press(key.KeyA), Release(key.KeyA), Press(key.KeyA)},
			down:  true,
		},
		{
			name:  "held key re-pressed",
			held:  true,
			edges: func(s *key.State) { s.Release(key.KeyA); s.Press(key.KeyA) },
			want:  []Transition{Press(key.KeyA), Release(key.KeyA), Press(key.KeyA)},
			down:  true,
		},
		{
			name:  "held key re-pressed and released",
			held:  true,
			edges: func(s *key.State) { s.Release(key.KeyA); s.Press(key.KeyA); s.Release(key.KeyA) },
			want:  []Transition{Press(key.KeyA), Release(key.KeyA)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			r := NewRecorder(zerolog.Nop(), nil)
			r.Enter(ctx, 0)

			st := key.NewState()
			if tt.held {
				st.Press(key.KeyA)
				st.EndTick()
			}
			tt.edges(st)
			require.True(t, r.Tick(ctx, time.Second, st))

			entry, ok := ctx.Session.Front()
			require.True(t, ok)
			assert.Equal(t, tt.want, entry.Transitions)

			replay := key.NewState()
			if tt.held {
				replay.Press(key.KeyA)
			}
			for _, tr := range entry.Transitions {
				tr.Apply(replay)
			}
			assert.Equal(t, tt.down, replay.Pressed(key.KeyA))
		})
	}
}

func TestRecorderExitKeepsSession(t *testing.T) {
	ctx := NewContext()
	ctx.Session = sampleSession()

	NewRecorder(zerolog.Nop(), nil).Exit(ctx)
	assert.Equal(t, 4, ctx.Session.Len())
}
