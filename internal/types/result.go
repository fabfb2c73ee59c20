package types

import (
	"errors"
	"time"
)

// Status reports whether a generation request succeeded.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of one orchestration call. It is constructed
// once and never mutated afterwards; cached results are copied before
// being returned so callers can annotate their own metadata.
type Result struct {
	Status       Status         `json:"status"`
	Text         string         `json:"text,omitempty"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	LineCount    int            `json:"line_count,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewErrorResult builds an error result from a classified error.
func NewErrorResult(err error) *Result {
	kind := KindOf(err)
	msg := err.Error()
	var e *Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	return &Result{
		Status:       StatusError,
		ErrorKind:    kind,
		ErrorMessage: msg,
		Metadata: map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// Copy returns a shallow copy of the result with its own metadata map,
// so annotations on the copy never leak into the cached original.
func (r *Result) Copy() *Result {
	dup := *r
	dup.Metadata = make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		dup.Metadata[k] = v
	}
	return &dup
}

// ToMap flattens the result into the primitive map shape consumed at
// the UI boundary.
func (r *Result) ToMap() map[string]any {
	m := map[string]any{
		"status": string(r.Status),
	}
	if r.Status == StatusSuccess {
		m["text"] = r.Text
		m["line_count"] = r.LineCount
	} else {
		m["error_kind"] = string(r.ErrorKind)
		m["error"] = r.ErrorMessage
	}
	if len(r.Metadata) > 0 {
		m["metadata"] = r.Metadata
	}
	return m
}
