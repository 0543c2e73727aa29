// Package loader decodes configuration files and environment variables into
// typed configuration structs.
//
// Files are decoded as TOML or YAML depending on their extension. Environment
// variables are applied on top with a common prefix.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies a configuration file format.
type Format uint8

const (
	// FormatTOML is the default format.
	FormatTOML Format = iota
	// FormatYAML is selected by the .yaml and .yml extensions.
	FormatYAML
)

var formatNames = map[Format]string{FormatTOML: "toml", FormatYAML: "yaml"}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatFromPath picks the format from the file extension. Anything that is
// not YAML is read as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ReadFunc returns the contents of a file. Nil means os.ReadFile.
type ReadFunc func(path string) ([]byte, error)

// LoadFile decodes the file at path into v. Fields absent from the file keep
// their current values, so v is normally pre-filled with defaults. A missing
// file is reported with an error wrapping fs.ErrNotExist.
func LoadFile(read ReadFunc, path string, v any) error {
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("config file %s: %w", path, fs.ErrNotExist)
	case err != nil:
		return fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(path, FormatFromPath(path), data, v)
}

// Decode parses data in the given format into v. source names the data in
// error messages.
func Decode(source string, format Format, data []byte, v any) error {
	switch format {
	case FormatYAML:
		return decodeYAML(source, data, v)
	default:
		return decodeTOML(source, data, v)
	}
}

// ParseError locates a decoding failure. Line and Column are 1-based and
// zero when the decoder could not tell.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	pos := e.Path
	if e.Line > 0 {
		pos += ":" + strconv.Itoa(e.Line)
		if e.Column > 0 {
			pos += ":" + strconv.Itoa(e.Column)
		}
	}
	return pos + ": " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }
