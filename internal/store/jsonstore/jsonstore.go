package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/habits/internal/model"
)

// JSON-backed storage. Single file, human-readable, rewritten in full on
// every Save. No locking and no write-then-rename: a crash mid-write can
// leave a truncated file that the next Load reports as a ReadError.

const (
	DataDirName  = "habit_data"
	DataFileName = "habits.json"
)

// DefaultDir is ~/Documents/habit_data.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, "Documents", DataDirName), nil
}

// DefaultPath is ~/Documents/habit_data/habits.json.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DataFileName), nil
}

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the persisted mapping. A missing or empty file yields an
// empty mapping.
func (s *Store) Load() (model.Mapping, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Mapping{}, nil
		}
		return nil, &ReadError{Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return model.Mapping{}, nil
	}
	var m model.Mapping
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, &ReadError{Path: s.path, Err: fmt.Errorf("json unmarshal: %w", err)}
	}
	if m == nil {
		m = model.Mapping{}
	}
	return m, nil
}

// Save overwrites the file with the full mapping, creating the containing
// directory on first use.
func (s *Store) Save(m model.Mapping) error {
	b, err := Encode(m)
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &DirectoryCreateError{Dir: dir, Err: err}
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	return nil
}

// Encode renders m as an indented JSON object with sorted keys and
// unescaped non-ASCII text.
func Encode(m model.Mapping) ([]byte, error) {
	if m == nil {
		m = model.Mapping{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return buf.Bytes(), nil
}
