// Package types holds the shared request/result types for the MuseMind
// generation core: styles, canonical requests, results, and the error
// taxonomy shared by the validator, catalog, and engine.
package types

import "strings"

// Style identifies the structural contract for one generation request.
type Style string

const (
	StyleFreeVerse               Style = "free_verse"
	StyleSonnet                  Style = "sonnet"
	StyleHaiku                   Style = "haiku"
	StyleLimerick                Style = "limerick"
	StyleBallad                  Style = "ballad"
	StyleAcrostic                Style = "acrostic"
	StyleStructuredReflection    Style = "structured_reflection"
	StylePhilosophicalReflection Style = "philosophical_reflection"
	StyleGenericCorrection       Style = "generic_correction"
	StylePlotSynopsis            Style = "plot_synopsis"
)

// styleNames maps accepted user-facing spellings to canonical styles.
// The UI historically sent display names like "Free Verse".
var styleNames = map[string]Style{
	"free verse":               StyleFreeVerse,
	"freeverse":                StyleFreeVerse,
	"free_verse":               StyleFreeVerse,
	"sonnet":                   StyleSonnet,
	"haiku":                    StyleHaiku,
	"limerick":                 StyleLimerick,
	"ballad":                   StyleBallad,
	"acrostic":                 StyleAcrostic,
	"structured reflection":    StyleStructuredReflection,
	"structuredpoem":           StyleStructuredReflection,
	"structured_reflection":    StyleStructuredReflection,
	"philosophical reflection": StylePhilosophicalReflection,
	"philosophicalreflection":  StylePhilosophicalReflection,
	"philosophical_reflection": StylePhilosophicalReflection,
	"correction":               StyleGenericCorrection,
	"generic_correction":       StyleGenericCorrection,
	"plot":                     StylePlotSynopsis,
	"plot_synopsis":            StylePlotSynopsis,
}

// displayNames maps canonical styles back to UI display names.
var displayNames = map[Style]string{
	StyleFreeVerse:               "Free Verse",
	StyleSonnet:                  "Sonnet",
	StyleHaiku:                   "Haiku",
	StyleLimerick:                "Limerick",
	StyleBallad:                  "Ballad",
	StyleAcrostic:                "Acrostic",
	StyleStructuredReflection:    "Structured Reflection",
	StylePhilosophicalReflection: "Philosophical Reflection",
	StyleGenericCorrection:       "Correction",
	StylePlotSynopsis:            "Plot Synopsis",
}

// ParseStyle resolves a user-supplied style name. Matching is
// case-insensitive and tolerant of spaces vs underscores.
func ParseStyle(name string) (Style, bool) {
	s, ok := styleNames[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// AllStyles returns every style in the catalog, in a stable order.
func AllStyles() []Style {
	return []Style{
		StyleFreeVerse, StyleSonnet, StyleHaiku, StyleLimerick,
		StyleBallad, StyleAcrostic, StyleStructuredReflection,
		StylePhilosophicalReflection, StyleGenericCorrection,
		StylePlotSynopsis,
	}
}

// PoemStyles returns the keyword-driven poem styles offered by the poem
// agent.
func PoemStyles() []Style {
	return []Style{
		StyleFreeVerse, StyleSonnet, StyleHaiku,
		StyleLimerick, StyleBallad, StyleAcrostic,
	}
}

// DisplayName returns the UI-facing name for the style.
func (s Style) DisplayName() string {
	if n, ok := displayNames[s]; ok {
		return n
	}
	return string(s)
}

// FixedLineCount returns the intrinsic line count for styles whose
// structure is fixed by the form itself (Haiku, Sonnet, Limerick). The
// requested line count is still passed through to the template for these
// styles, but the template text pins the real structure; the returned
// value is informational only. ok is false for styles that honor the
// requested count.
func (s Style) FixedLineCount() (int, bool) {
	switch s {
	case StyleHaiku:
		return 3, true
	case StyleSonnet:
		return 14, true
	case StyleLimerick:
		return 5, true
	default:
		return 0, false
	}
}

// UsesKeywords reports whether the style is driven by the
// keywords+emotion request path.
func (s Style) UsesKeywords() bool {
	switch s {
	case StyleFreeVerse, StyleSonnet, StyleHaiku, StyleLimerick, StyleBallad, StyleAcrostic:
		return true
	default:
		return false
	}
}

// RequiresContext reports whether zero retrieved chunks is fatal for the
// style. Only the strict keyword-poem path requires non-empty context;
// raw-thought, correction, and plot paths tolerate an empty context.
func (s Style) RequiresContext() bool {
	return s.UsesKeywords()
}

// UsesRetrieval reports whether the style consults a corpus index at
// all. Corrections are pure text transformations and skip retrieval.
func (s Style) UsesRetrieval() bool {
	return s != StyleGenericCorrection
}
