package autoplay

import (
	"bytes"
	"os"
	"path/filepath"
)

// Save writes the session to path, creating parent directories as needed.
// An existing file at path is replaced. The file is written to a temporary
// sibling first and renamed into place.
func (s *Session) Save(path string) error {
	if err := s.Validate(); err != nil {
		return &Error{Op: "save", Path: path, Kind: KindEncode, Err: err}
	}

	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return &Error{Op: "save", Path: path, Kind: KindEncode, Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &Error{Op: "save", Path: path, Kind: KindIO, Err: err}
		}
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, buf.Bytes(), 0o644); err != nil {
		return &Error{Op: "save", Path: path, Kind: KindIO, Err: err}
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return &Error{Op: "save", Path: path, Kind: KindIO, Err: err}
	}

	return nil
}

// Load replaces the session contents with the file at path. On any failure
// the session is left untouched.
func (s *Session) Load(path string) error {
	loaded, err := ReadFile(path)
	if err != nil {
		return err
	}
	s.Replace(loaded)
	return nil
}

// ReadFile decodes and validates the session file at path.
func ReadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Kind: KindIO, Err: err}
	}

	loaded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Kind: KindDecode, Err: err}
	}

	if err := loaded.Validate(); err != nil {
		return nil, &Error{Op: "load", Path: path, Kind: KindDecode, Err: err}
	}

	return loaded, nil
}
