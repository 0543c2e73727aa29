package config

import (
	"errors"
	"fmt"

	"github.com/dshills/autoplay/internal/config/loader"
)

var (
	// ErrValidationFailed is the root of every error returned by Validate.
	ErrValidationFailed = errors.New("invalid configuration")

	// ErrFileNotFound is returned by Load when the named file is missing.
	ErrFileNotFound = errors.New("config file not found")
)

// ParseError is returned when a configuration file cannot be decoded.
type ParseError = loader.ParseError

// Problem classifies a rejected setting.
type Problem uint8

const (
	// ProblemRange: a number outside its allowed bounds.
	ProblemRange Problem = iota + 1
	// ProblemChoice: a string that is not one of the accepted names.
	ProblemChoice
	// ProblemMissing: an empty setting that the rest of the config depends on.
	ProblemMissing
	// ProblemConflict: two key bindings that name the same key.
	ProblemConflict
)

var problemNames = map[Problem]string{
	ProblemRange:    "range",
	ProblemChoice:   "choice",
	ProblemMissing:  "missing",
	ProblemConflict: "conflict",
}

func (p Problem) String() string {
	if name, ok := problemNames[p]; ok {
		return name
	}
	return fmt.Sprintf("problem(%d)", uint8(p))
}

// ValidationError is one rejected setting. Validate joins all of them
// under ErrValidationFailed.
type ValidationError struct {
	Setting string // dotted name, e.g. "loop.tick_rate"
	Value   any
	Reason  string
	Problem Problem
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %#v: %s", e.Setting, e.Value, e.Reason)
}

// ValidationErrors returns every *ValidationError wrapped in err, in the
// order Validate found them.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *ValidationError:
			out = append(out, e)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		default:
			walk(errors.Unwrap(err))
		}
	}
	walk(err)
	return out
}
