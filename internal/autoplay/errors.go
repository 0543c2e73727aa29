package autoplay

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dshills/autoplay/internal/input/key"
)

// Decode failures. Load wraps these in an *Error of kind KindDecode.
var (
	ErrInvalidFormat   = errors.New("invalid session format")
	ErrVersionMismatch = errors.New("session version mismatch")
	ErrTruncated       = errors.New("session data truncated")
	ErrTrailingData    = errors.New("unexpected data after last entry")
	ErrUnknownTag      = errors.New("unknown transition tag")
	ErrUnknownKey      = key.ErrUnknownKey
	ErrOutOfOrder      = errors.New("entry offsets out of order")
	ErrEmptyEntry      = errors.New("entry has no transitions")
)

// ErrNotFound matches a Load of a missing file.
var ErrNotFound = fs.ErrNotExist

// ErrorKind classifies session file failures.
type ErrorKind uint8

const (
	// KindIO covers missing files, permissions and directory creation.
	KindIO ErrorKind = iota
	// KindDecode covers malformed, truncated or unrecognized content.
	KindDecode
	// KindEncode covers sessions that cannot be serialized.
	KindEncode
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Error describes a failed save or load.
type Error struct {
	Op   string // "save" or "load"
	Path string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("autoplay: %s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a session decode failure.
func IsDecodeError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDecode
}

// IsIOError reports whether err is a session I/O failure.
func IsIOError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindIO
}
