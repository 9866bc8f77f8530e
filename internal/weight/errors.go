package weight

import (
	"errors"
	"fmt"
)

var (
	// ErrAllPatternsInvalid is returned when no pattern compiled.
	ErrAllPatternsInvalid = errors.New("no valid patterns")
	// ErrNoRoots is returned when none of the patterns' roots exist.
	ErrNoRoots = errors.New("no search root could be resolved")
	// ErrFinalized is returned when a file is recorded after the result was taken.
	ErrFinalized = errors.New("aggregate already finalized")
)

// PatternError reports a pattern that was rejected at compile time.
type PatternError struct {
	// Index is the position of the pattern in Options.Patterns.
	Index int
	// Pattern is the pattern as given.
	Pattern string
	// Err is the underlying syntax error.
	Err error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %d (%q): %v", e.Index+1, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// FailureKind classifies a non-fatal failure.
type FailureKind string

const (
	// FailureTraversal is a directory or symlink that could not be read.
	FailureTraversal FailureKind = "traversal"
	// FailureSizeLookup is a matched file that could not be sized.
	FailureSizeLookup FailureKind = "size_lookup"
)

// Failure is a path skipped because of an error. It never aborts a run.
type Failure struct {
	// Path is the file or directory concerned.
	Path string `json:"path" yaml:"path"`
	// Kind tells whether the walk or the size lookup failed.
	Kind FailureKind `json:"kind" yaml:"kind"`
	// Reason is the error text.
	Reason string `json:"reason" yaml:"reason"`
	// Err is the underlying error.
	Err error `json:"-" yaml:"-"`
}

func newFailure(path string, kind FailureKind, err error) Failure {
	return Failure{Path: path, Kind: kind, Reason: err.Error(), Err: err}
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Reason)
}
