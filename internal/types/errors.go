package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation request for programmatic
// handling. Kinds are stable strings so they can cross the HTTP boundary
// unchanged.
type ErrorKind string

const (
	ErrEmptyInput          ErrorKind = "empty_input"
	ErrUnknownStyle        ErrorKind = "unknown_style"
	ErrUnknownCorpus       ErrorKind = "unknown_corpus"
	ErrInvalidOption       ErrorKind = "invalid_option"
	ErrLineCountOutOfRange ErrorKind = "line_count_out_of_range"
	ErrIndexUnavailable    ErrorKind = "index_unavailable"
	ErrSearchFailed        ErrorKind = "search_failed"
	ErrNoContextFound      ErrorKind = "no_context_found"
	ErrGenerationFailed    ErrorKind = "generation_failed"
	ErrMissingVariable     ErrorKind = "missing_variable"
	ErrInternal            ErrorKind = "internal"
)

// Error is a classified error carrying a human-readable message plus a
// kind for programmatic handling.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// E builds a classified error.
func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error, defaulting to ErrInternal for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}
