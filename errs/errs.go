// Package errs defines the error taxonomy shared by the rrf and index
// packages. Every error that crosses a package boundary is wrapped in a
// *Error carrying one of the four kinds below; callers distinguish them
// with errors.As rather than string matching.
package errs

import "fmt"

// Kind classifies a failure the way the rest of the library reports it.
type Kind int

const (
	// Config covers missing files, unrecognized directory layouts, and
	// empty input sets discovered before any parsing begins.
	Config Kind = iota
	// Data covers gzip corruption, malformed rows, unparsable numeric
	// fields, and non-ASCII input where only ASCII is accepted.
	Data
	// Serialize covers JSON/FST output failures, including an FST
	// builder rejecting an out-of-order key.
	Serialize
	// Query covers regex compile failures and Levenshtein automaton
	// construction failures (state count over the cap).
	Query
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Data:
		return "data"
	case Serialize:
		return "serialize"
	case Query:
		return "query"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across the library boundary.
// Source, when known, names the file or row that triggered the failure.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err as the given kind, with no source annotation.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Newf builds a new error of the given kind from a format string.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// From wraps err as the given kind, annotated with the file or row that
// caused it.
func From(kind Kind, source string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Source: source, Err: err}
}
