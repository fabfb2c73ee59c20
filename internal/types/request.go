package types

import (
	"strconv"
	"strings"
)

// Line count bounds accepted by the validator.
const (
	MinLineCount = 1
	MaxLineCount = 50
)

// Request is the canonical, validated form of a generation request.
// Exactly one of the keywords+emotion path or the freeform-text path is
// populated depending on the agent entry point; both converge on this
// shape before reaching the engine.
type Request struct {
	Style           Style
	Corpus          string
	Keywords        []string // order preserved, dedup not required
	EmotionOrMood   string
	TargetLineCount int
	FreeformText    string

	// Correction-path options, default-filled by the validator.
	CorrectionFocus   string
	PreserveStructure bool
	OutputFormat      string

	// Plot-path options.
	Genre      string
	Complexity string
}

// CacheKey returns the canonical serialization of the request used as
// the result-cache key. Fields are emitted in fixed sorted-name order so
// the key never depends on how the raw request map was populated.
// Keyword order is preserved (it is part of the request's meaning).
func (r *Request) CacheKey() string {
	var b strings.Builder
	b.WriteString("complexity=")
	b.WriteString(r.Complexity)
	b.WriteString("|corpus=")
	b.WriteString(r.Corpus)
	b.WriteString("|correction_focus=")
	b.WriteString(r.CorrectionFocus)
	b.WriteString("|emotion=")
	b.WriteString(r.EmotionOrMood)
	b.WriteString("|format=")
	b.WriteString(r.OutputFormat)
	b.WriteString("|genre=")
	b.WriteString(r.Genre)
	b.WriteString("|keywords=")
	b.WriteString(strings.Join(r.Keywords, ","))
	b.WriteString("|line_count=")
	b.WriteString(strconv.Itoa(r.TargetLineCount))
	b.WriteString("|preserve_structure=")
	b.WriteString(strconv.FormatBool(r.PreserveStructure))
	b.WriteString("|style=")
	b.WriteString(string(r.Style))
	b.WriteString("|text=")
	b.WriteString(r.FreeformText)
	return b.String()
}
