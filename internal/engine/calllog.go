package engine

import (
	"sync"
	"time"
)

// Call records one backend generation call for the diagnostics endpoint.
type Call struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	Attempts         int       `json:"attempts"`
	LatencyMS        int64     `json:"latency_ms"`
	Success          bool      `json:"success"`
	Error            string    `json:"error,omitempty"`
}

// CallLog keeps a bounded in-memory ring of recent backend calls.
type CallLog struct {
	mu       sync.Mutex
	calls    []Call
	capacity int
}

// NewCallLog creates a call log holding up to capacity entries.
func NewCallLog(capacity int) *CallLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &CallLog{capacity: capacity}
}

// Record appends a call, dropping the oldest entry when full.
func (l *CallLog) Record(c Call) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
	if len(l.calls) > l.capacity {
		l.calls = l.calls[len(l.calls)-l.capacity:]
	}
}

// Recent returns recorded calls, newest first.
func (l *CallLog) Recent() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	for i, c := range l.calls {
		out[len(l.calls)-1-i] = c
	}
	return out
}

// Len returns the number of recorded calls.
func (l *CallLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}
