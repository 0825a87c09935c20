package jsonstore

import "fmt"

// ReadError reports a persisted file that exists but cannot be read or
// parsed. Callers treat it as fatal at startup.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed overwrite of the persisted file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// DirectoryCreateError reports that the save folder could not be created.
type DirectoryCreateError struct {
	Dir string
	Err error
}

func (e *DirectoryCreateError) Error() string { return fmt.Sprintf("mkdir %s: %v", e.Dir, e.Err) }
func (e *DirectoryCreateError) Unwrap() error { return e.Err }
