package autoplay

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/autoplay/internal/input/key"
)

func encode(t *testing.T, s *Session) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf))
	return buf.Bytes()
}

func TestCodecRoundTrip(t *testing.T) {
	sessions := map[string]*Session{
		"empty":  NewSession(),
		"sample": sampleSession(),
		"large offset": NewSession(
			NewEntry(90*time.Minute+123456789*time.Nanosecond, Press(key.KeyNumpadEnter)),
		),
	}

	for name, s := range sessions {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(bytes.NewReader(encode(t, s)))
			require.NoError(t, err)
			assert.True(t, s.Equal(got), "got %v, want %v", got.Entries(), s.Entries())
		})
	}
}

func TestCodecLayout(t *testing.T) {
	s := NewSession(NewEntry(1500*time.Millisecond, Press(key.KeyA), Release(key.KeyB)))
	data := encode(t, s)

	require.Len(t, data, 4+2+4+16+2*3)
	assert.Equal(t, []byte("GSIS"), data[0:4])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:6]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[6:10]))
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[10:18]))
	assert.Equal(t, uint32(500_000_000), binary.LittleEndian.Uint32(data[18:22]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[22:26]))
	assert.Equal(t, byte(0), data[26])
	assert.Equal(t, uint16(key.KeyA), binary.LittleEndian.Uint16(data[27:29]))
	assert.Equal(t, byte(1), data[29])
	assert.Equal(t, uint16(key.KeyB), binary.LittleEndian.Uint16(data[30:32]))
}

func TestDecodeCorrupt(t *testing.T) {
	valid := encode(t, sampleSession())

	withByte := func(i int, b byte) []byte {
		out := bytes.Clone(valid)
		out[i] = b
		return out
	}

	// First transition of the first entry starts after the 10-byte header
	// and the 16-byte entry header.
	const firstTag = 10 + 16

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty input", nil, ErrTruncated},
		{"bad magic", withByte(0, 'X'), ErrInvalidFormat},
		{"bad version", withByte(4, 9), ErrVersionMismatch},
		{"short header", valid[:7], ErrTruncated},
		{"truncated entry", valid[:len(valid)-1], ErrTruncated},
		{"trailing data", append(bytes.Clone(valid), 0), ErrTrailingData},
		{"unknown tag", withByte(firstTag, 2), ErrUnknownTag},
		{"unknown key", withByte(firstTag+1, 0xff), ErrUnknownKey},
		{"nanos out of range", withByte(10+8+3, 0xff), ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode(bytes.NewReader(tt.data))
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	err := NewSession(NewEntry(0, Press(key.KeyNone))).Encode(&buf)
	assert.ErrorIs(t, err, ErrUnknownKey)

	err = NewSession(NewEntry(-time.Second, Press(key.KeyA))).Encode(&buf)
	assert.Error(t, err)
}
