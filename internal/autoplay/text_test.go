package autoplay

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/autoplay/internal/input/key"
)

func TestTextForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleSession().EncodeText(&buf))

	text := buf.String()
	assert.Contains(t, text, "version: 1")
	assert.Contains(t, text, "offset: 500ms")
	assert.Contains(t, text, "- press: ShiftLeft")
	assert.Contains(t, text, "- release: A")

	got, err := DecodeText(strings.NewReader(text))
	require.NoError(t, err)
	assert.True(t, sampleSession().Equal(got))
}

func TestDecodeTextHandWritten(t *testing.T) {
	doc := `
entries:
  - offset: 0s
    transitions:
      - press: ctrl
      - press: c
  - offset: 1.5s
    transitions:
      - release: KeyC
      - release: control
`
	got, err := DecodeText(strings.NewReader(doc))
	require.NoError(t, err)

	want := NewSession(
		NewEntry(0, Press(key.KeyControlLeft), Press(key.KeyC)),
		NewEntry(1500*time.Millisecond, Release(key.KeyC), Release(key.KeyControlLeft)),
	)
	assert.True(t, want.Equal(got), "got %v", got.Entries())
}

func TestDecodeTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"unknown key", "entries:\n  - offset: 0s\n    transitions:\n      - press: nokey\n", ErrUnknownKey},
		{"unknown edge", "entries:\n  - offset: 0s\n    transitions:\n      - hold: A\n", ErrUnknownTag},
		{"out of order", "entries:\n  - offset: 2s\n    transitions: [{press: A}]\n  - offset: 1s\n    transitions: [{release: A}]\n", ErrOutOfOrder},
		{"empty entry", "entries:\n  - offset: 1s\n    transitions: []\n", ErrEmptyEntry},
		{"version", "version: 2\nentries: []\n", ErrVersionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeText(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := DecodeText(strings.NewReader("entries:\n  - offset: soon\n    transitions: [{press: A}]\n"))
	assert.Error(t, err)

	_, err = DecodeText(strings.NewReader("entries:\n  - offset: 0s\n    transitions: [{press: A, release: B}]\n"))
	assert.Error(t, err)
}

func TestDecodeTextEmpty(t *testing.T) {
	got, err := DecodeText(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
