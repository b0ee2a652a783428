package domain

import (
	"errors"
	"fmt"
)

// Common domain errors surfaced by the evaluation engine.
var (
	// ErrEmptyQuestionSet indicates the question source contained no records.
	ErrEmptyQuestionSet = errors.New("question set is empty")

	// ErrNoAlignedSamples indicates no question could be matched with an
	// answer, leaving nothing to evaluate.
	ErrNoAlignedSamples = errors.New("no samples could be aligned")

	// ErrInvalidConfiguration indicates configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// StructuralError marks a failure that invalidates the whole run: a missing
// or malformed input file, or an empty question set. Structural failures abort
// the run; everything else degrades locally.
type StructuralError struct {
	// Source names the input that failed, typically a file path.
	Source string

	// Err is the underlying cause.
	Err error
}

func (e *StructuralError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("structural error: %v", e.Err)
	}
	return fmt.Sprintf("structural error in %s: %v", e.Source, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// NewStructuralError wraps err as a fatal input failure.
func NewStructuralError(source string, err error) *StructuralError {
	return &StructuralError{Source: source, Err: err}
}

// PersistenceError marks a failure to write the evaluation report. It is
// fatal and surfaced with a non-zero exit.
type PersistenceError struct {
	// Path is the report destination that could not be written.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist report to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err as a report-write failure.
func NewPersistenceError(path string, err error) *PersistenceError {
	return &PersistenceError{Path: path, Err: err}
}

// IsStructural reports whether err is fatal to the run as a whole.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
