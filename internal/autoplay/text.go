package autoplay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/autoplay/internal/input/key"
)

// textDocument is the YAML form of a session.
type textDocument struct {
	Version int         `yaml:"version"`
	Entries []textEntry `yaml:"entries"`
}

type textEntry struct {
	Offset      string       `yaml:"offset"`
	Transitions []Transition `yaml:"transitions"`
}

// MarshalYAML encodes the transition as a single-key mapping such as
// {press: A}.
func (t Transition) MarshalYAML() (any, error) {
	if !t.Key.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, uint16(t.Key))
	}
	switch t.Edge {
	case EdgePress, EdgeRelease:
		return map[string]string{t.Edge.String(): t.Key.String()}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, t.Edge)
	}
}

// UnmarshalYAML decodes {press: KEY} or {release: KEY}.
func (t *Transition) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]string
	if err := value.Decode(&m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("line %d: transition needs exactly one of press or release", value.Line)
	}

	for edge, name := range m {
		k, err := key.Parse(name)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		switch edge {
		case "press":
			*t = Press(k)
		case "release":
			*t = Release(k)
		default:
			return fmt.Errorf("line %d: %w: %q", value.Line, ErrUnknownTag, edge)
		}
	}
	return nil
}

// MarshalYAML encodes the session as a version tag and a list of entries
// with human-readable offsets.
func (s *Session) MarshalYAML() (any, error) {
	doc := textDocument{
		Version: formatVersion,
		Entries: make([]textEntry, len(s.entries)),
	}
	for i, e := range s.entries {
		doc.Entries[i] = textEntry{
			Offset:      e.Offset.String(),
			Transitions: e.Transitions,
		}
	}
	return doc, nil
}

// UnmarshalYAML decodes the text form and validates the result. The session
// is only replaced when the whole document is valid.
func (s *Session) UnmarshalYAML(value *yaml.Node) error {
	var doc textDocument
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if doc.Version != 0 && doc.Version != formatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, doc.Version, formatVersion)
	}

	loaded := &Session{entries: make([]Entry, 0, len(doc.Entries))}
	for i, te := range doc.Entries {
		offset, err := time.ParseDuration(te.Offset)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		loaded.PushBack(NewEntry(offset, te.Transitions...))
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	s.Replace(loaded)
	return nil
}

// EncodeText writes the session's YAML form to w.
func (s *Session) EncodeText(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeText reads a session from its YAML form. An empty document is an
// empty session.
func DecodeText(r io.Reader) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s := &Session{}
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		return nil, fmt.Errorf("decode session text: %w", err)
	}
	return s, nil
}
