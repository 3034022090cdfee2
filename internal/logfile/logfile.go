package logfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// File is one immutable log input.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Extensions accepted as text log input.
var AcceptedExtensions = []string{".log", ".txt", ".out", ".err"}

// InvalidInputError reports an upload that cannot be treated as log text.
type InvalidInputError struct {
	Name   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Name, e.Reason)
}

func HasAcceptedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range AcceptedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Read loads a log file from disk, rejecting binary or non-UTF-8 content.
func Read(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &InvalidInputError{Name: path, Reason: err.Error()}
	}
	name := filepath.Base(path)
	f := File{Name: name, Content: string(data)}
	if err := Validate(f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate checks that the file content is readable text.
func Validate(f File) error {
	if !utf8.ValidString(f.Content) {
		return &InvalidInputError{Name: f.Name, Reason: "content is not valid UTF-8"}
	}
	if bytes.ContainsRune([]byte(f.Content), '\x00') {
		return &InvalidInputError{Name: f.Name, Reason: "content contains NUL bytes"}
	}
	return nil
}
