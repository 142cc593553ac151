package types

import (
	"errors"
	"fmt"
)

// Causes wrapped by the fatal error types below.
var (
	ErrEmptyTable      = errors.New("table has no header row")
	ErrNoColumns       = errors.New("no columns declared")
	ErrMissingHeader   = errors.New("required header not found")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// SourceReadError reports that the bill table could not be opened or parsed.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("cannot read bill table %q: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// MissingReferenceError reports that the mandatory allowed-values reference
// is absent or contributes zero columns.
type MissingReferenceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MissingReferenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("allowed values reference: %s", e.Reason)
	}
	return fmt.Sprintf("allowed values reference %q: %s", e.Path, e.Reason)
}

func (e *MissingReferenceError) Unwrap() error { return e.Err }

// ReferenceLoadError reports that a reference file exists but cannot be
// used. Kind names the reference ("exclusions", "work codes", ...).
type ReferenceLoadError struct {
	Kind string
	Path string
	Err  error
}

func (e *ReferenceLoadError) Error() string {
	return fmt.Sprintf("cannot load %s reference %q: %v", e.Kind, e.Path, e.Err)
}

func (e *ReferenceLoadError) Unwrap() error { return e.Err }
