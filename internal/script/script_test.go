package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/input/key"
)

func TestComposeGroupsAndOrders(t *testing.T) {
	src := `
release("A", 1.2)
press("A", 0.5)
press("ShiftLeft", 0.5)
tap("b", 2, 0.25)
`
	s, err := New().Compose(context.Background(), src)
	require.NoError(t, err)

	want := autoplay.NewSession(
		autoplay.NewEntry(500*time.Millisecond, autoplay.Press(key.KeyA), autoplay.Press(key.KeyShiftLeft)),
		autoplay.NewEntry(1200*time.Millisecond, autoplay.Release(key.KeyA)),
		autoplay.NewEntry(2*time.Second, autoplay.Press(key.KeyB)),
		autoplay.NewEntry(2250*time.Millisecond, autoplay.Release(key.KeyB)),
	)
	assert.True(t, want.Equal(s), "got %v", s.Entries())
	assert.NoError(t, s.Validate())
}

func TestComposeText(t *testing.T) {
	src := `
local t = text("hi", 1, 0.2)
press("Enter", t)
`
	s, err := New(WithHold(50*time.Millisecond)).Compose(context.Background(), src)
	require.NoError(t, err)

	want := autoplay.NewSession(
		autoplay.NewEntry(time.Second, autoplay.Press(key.KeyH)),
		autoplay.NewEntry(1050*time.Millisecond, autoplay.Release(key.KeyH)),
		autoplay.NewEntry(1200*time.Millisecond, autoplay.Press(key.KeyI)),
		autoplay.NewEntry(1250*time.Millisecond, autoplay.Release(key.KeyI)),
		autoplay.NewEntry(1400*time.Millisecond, autoplay.Press(key.KeyEnter)),
	)
	assert.True(t, want.Equal(s), "got %v", s.Entries())
}

func TestComposeLoops(t *testing.T) {
	src := `
for i = 0, 9 do
  tap("Space", i * 0.5)
end
`
	s, err := New().Compose(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Len())
	assert.Equal(t, 4600*time.Millisecond, s.Duration())
}

func TestComposeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", `press("Hyper", 0)`},
		{"negative time", `press("A", -1)`},
		{"missing time", `press("A")`},
		{"syntax", `press("A", 0`},
		{"runtime", `error("nope")`},
		{"no io", `io.write("x")`},
		{"no os", `os.exit(1)`},
		{"no require", `require("os")`},
		{"no loadstring", `loadstring("return 1")()`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Compose(context.Background(), tt.src)
			assert.Error(t, err)
		})
	}
}

func TestComposeLimits(t *testing.T) {
	_, err := New(WithMaxTransitions(3)).Compose(context.Background(), `
for i = 1, 10 do press("A", i) end
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrTooManyTransitions.Error())

	_, err = New(WithTimeout(50*time.Millisecond)).Compose(context.Background(), `while true do end`)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComposeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.lua")
	require.NoError(t, os.WriteFile(path, []byte(`tap("Q", 0)`), 0o644))

	s, err := New().ComposeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = New().ComposeFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
