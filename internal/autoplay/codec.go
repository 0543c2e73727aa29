package autoplay

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dshills/autoplay/internal/input/key"
)

// FileExtension is the conventional suffix for session files.
const FileExtension = ".gsi"

// Session file format version.
const formatVersion = 1

// Magic bytes for file identification.
var formatMagic = []byte("GSIS")

// Allocation caps while decoding; counts above these still decode, they just
// grow the slice as they go.
const (
	maxPreallocEntries     = 4096
	maxPreallocTransitions = 64
)

// Encode writes the session in the binary session format.
// Format (little endian):
//
//	[4 bytes] Magic "GSIS"
//	[2 bytes] Version
//	[4 bytes] Entry count
//	[entries...]
//	  [8 bytes] Offset seconds
//	  [4 bytes] Offset nanoseconds (< 1e9)
//	  [4 bytes] Transition count
//	  [transitions...]
//	    [1 byte]  Tag (0 = press, 1 = release)
//	    [2 bytes] Key code
func (s *Session) Encode(w io.Writer) error {
	if uint64(len(s.entries)) > math.MaxUint32 {
		return fmt.Errorf("too many entries: %d", len(s.entries))
	}

	bw := bufio.NewWriter(w)

	if _, err := bw.Write(formatMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint16(formatVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(s.entries))); err != nil {
		return err
	}

	for i, e := range s.entries {
		if err := writeEntry(bw, e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return bw.Flush()
}

func writeEntry(w *bufio.Writer, e Entry) error {
	if e.Offset < 0 {
		return fmt.Errorf("negative offset %v", e.Offset)
	}
	if uint64(len(e.Transitions)) > math.MaxUint32 {
		return fmt.Errorf("too many transitions: %d", len(e.Transitions))
	}

	secs := uint64(e.Offset / time.Second)
	nanos := uint32(e.Offset % time.Second)

	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:8], secs)
	binary.LittleEndian.PutUint32(hdr[8:12], nanos)
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(e.Transitions)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	for _, t := range e.Transitions {
		if t.Edge != EdgePress && t.Edge != EdgeRelease {
			return fmt.Errorf("%w: %d", ErrUnknownTag, t.Edge)
		}
		if !t.Key.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownKey, uint16(t.Key))
		}
		var buf [3]byte
		buf[0] = byte(t.Edge)
		binary.LittleEndian.PutUint16(buf[1:3], uint16(t.Key))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}

	return nil
}

// Decode reads a session in the binary session format. The whole input must
// be consumed by the declared entries.
func Decode(r io.Reader) (*Session, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(formatMagic))
	if err := readFull(br, magic); err != nil {
		return nil, err
	}
	if string(magic) != string(formatMagic) {
		return nil, ErrInvalidFormat
	}

	var hdr [6]byte
	if err := readFull(br, hdr[:]); err != nil {
		return nil, err
	}
	if v := binary.LittleEndian.Uint16(hdr[0:2]); v != formatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, v, formatVersion)
	}
	count := binary.LittleEndian.Uint32(hdr[2:6])

	s := &Session{entries: make([]Entry, 0, min(count, maxPreallocEntries))}
	for i := uint32(0); i < count; i++ {
		e, err := readEntry(br)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		s.entries = append(s.entries, e)
	}

	if _, err := br.ReadByte(); err == nil {
		return nil, ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}

	return s, nil
}

func readEntry(r *bufio.Reader) (Entry, error) {
	var hdr [16]byte
	if err := readFull(r, hdr[:]); err != nil {
		return Entry{}, err
	}

	secs := binary.LittleEndian.Uint64(hdr[0:8])
	nanos := binary.LittleEndian.Uint32(hdr[8:12])
	count := binary.LittleEndian.Uint32(hdr[12:16])

	if nanos >= uint32(time.Second) {
		return Entry{}, fmt.Errorf("%w: nanoseconds %d out of range", ErrInvalidFormat, nanos)
	}
	if secs > uint64(math.MaxInt64/int64(time.Second)) {
		return Entry{}, fmt.Errorf("%w: offset %ds out of range", ErrInvalidFormat, secs)
	}

	e := Entry{
		Offset:      time.Duration(secs)*time.Second + time.Duration(nanos),
		Transitions: make([]Transition, 0, min(count, maxPreallocTransitions)),
	}

	for i := uint32(0); i < count; i++ {
		var buf [3]byte
		if err := readFull(r, buf[:]); err != nil {
			return Entry{}, err
		}
		edge := Edge(buf[0])
		if edge != EdgePress && edge != EdgeRelease {
			return Entry{}, fmt.Errorf("transition %d: %w: %d", i, ErrUnknownTag, buf[0])
		}
		k := key.Key(binary.LittleEndian.Uint16(buf[1:3]))
		if !k.Valid() {
			return Entry{}, fmt.Errorf("transition %d: %w: %d", i, ErrUnknownKey, uint16(k))
		}
		e.Transitions = append(e.Transitions, Transition{Edge: edge, Key: k})
	}

	return e, nil
}

// readFull maps short reads to ErrTruncated.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}
