package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a submission is attempted while another is in flight
	ErrBusy = errors.New("a request is already in progress")
	// ErrEmptyQuery is returned for blank query text
	ErrEmptyQuery = errors.New("query text is empty")
	// ErrNoFiles is returned when an upload names no files
	ErrNoFiles = errors.New("no files to upload")
	// ErrStaleSubmission is returned when a completion does not match the in-flight submission
	ErrStaleSubmission = errors.New("stale submission")
	// ErrSessionNotFound is returned by lookups of ids missing from the collection
	ErrSessionNotFound = errors.New("session not found")
)

// StorageError represents errors accessing the durable slot
type StorageError struct {
	Path string
	Op   string // "open", "migrate", "read", "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing persisted data
type ParseError struct {
	Source string // "slot", "config"
	Key    string // slot key or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
