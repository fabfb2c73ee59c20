package engine

import (
	"strconv"
	"strings"

	"musemind/internal/types"
)

// Validation defaults. These mirror the tool defaults the UI shipped
// with.
const (
	DefaultCorpus          = "kafka"
	DefaultEmotion         = "neutral"
	DefaultLineCount       = 8
	DefaultCorrectionFocus = "grammar and flow"
	DefaultOutputFormat    = "text"

	morphDefaultEmotion   = "melancholy"
	morphDefaultLineCount = 16

	plotCorpus = "plot_ideas"
)

// Fixed option lists for the plot path.
var (
	plotGenres       = []string{"Romance", "Mystery", "Adventure", "Fantasy", "Drama", "Horror", "Slice of Life"}
	plotMoods        = []string{"Melancholic", "Joyful", "Mysterious", "Passionate", "Serene", "Intense", "Whimsical"}
	plotComplexities = []string{"simple", "moderate", "complex"}
)

// CorpusCatalog is the part of the index registry validation needs: the
// set of configured corpus names. A corpus whose index failed to load is
// still a valid request target (retrieval degrades), so validation
// checks configured names, not loaded ones.
type CorpusCatalog interface {
	Known(name string) bool
	ListKnown() []string
}

// Validator normalizes raw request maps into canonical requests.
type Validator struct {
	corpora CorpusCatalog
}

// NewValidator creates a validator backed by the given corpus catalog.
func NewValidator(corpora CorpusCatalog) *Validator {
	return &Validator{corpora: corpora}
}

// ValidatePoem handles the keyword-driven poem path. Unknown styles are
// a hard error here; the raw-thought and correction paths are
// deliberately more permissive.
func (v *Validator) ValidatePoem(raw map[string]any) (*types.Request, error) {
	keywords := rawStringSlice(raw, "keywords")
	if len(keywords) == 0 {
		return nil, types.E(types.ErrEmptyInput, "keywords must be present and non-blank")
	}

	style := types.StyleFreeVerse
	if name := rawString(raw, "style"); name != "" {
		parsed, ok := types.ParseStyle(name)
		if !ok || !parsed.UsesKeywords() {
			return nil, types.E(types.ErrUnknownStyle, "unknown style %q", name)
		}
		style = parsed
	}

	corpus, err := v.resolveCorpus(raw, DefaultCorpus)
	if err != nil {
		return nil, err
	}

	// The requested count passes through unchanged even for fixed-form
	// styles; the templates state the traditional length themselves.
	lineCount, err := rawLineCount(raw, DefaultLineCount)
	if err != nil {
		return nil, err
	}

	emotion := rawString(raw, "emotion")
	if emotion == "" {
		emotion = DefaultEmotion
	}

	return &types.Request{
		Style:           style,
		Corpus:          corpus,
		Keywords:        keywords,
		EmotionOrMood:   emotion,
		TargetLineCount: lineCount,
	}, nil
}

// ValidateMorph handles raw-thought transformation. Style defaulting is
// permissive: anything that does not name the philosophical reflection
// falls back to the structured reflection.
func (v *Validator) ValidateMorph(raw map[string]any) (*types.Request, error) {
	text := rawString(raw, "text", "raw_thought", "thought")
	if text == "" {
		return nil, types.E(types.ErrEmptyInput, "text must be present and non-blank")
	}

	style := types.StyleStructuredReflection
	if name := rawString(raw, "desired_output", "style"); name != "" {
		if parsed, ok := types.ParseStyle(name); ok && parsed == types.StylePhilosophicalReflection {
			style = types.StylePhilosophicalReflection
		}
	}

	corpus, err := v.resolveCorpus(raw, DefaultCorpus)
	if err != nil {
		return nil, err
	}

	lineCount, err := rawLineCount(raw, morphDefaultLineCount)
	if err != nil {
		return nil, err
	}

	emotion := rawString(raw, "emotion")
	if emotion == "" {
		emotion = morphDefaultEmotion
	}

	return &types.Request{
		Style:           style,
		Corpus:          corpus,
		FreeformText:    text,
		EmotionOrMood:   emotion,
		TargetLineCount: lineCount,
	}, nil
}

// ValidateCorrection handles the text correction path. No retrieval, no
// corpus, permissive defaults throughout.
func (v *Validator) ValidateCorrection(raw map[string]any) (*types.Request, error) {
	text := rawString(raw, "text")
	if text == "" {
		return nil, types.E(types.ErrEmptyInput, "text must be present and non-blank")
	}

	focus := rawString(raw, "correction_focus")
	if focus == "" {
		focus = DefaultCorrectionFocus
	}
	format := rawString(raw, "output_format")
	if format == "" {
		format = DefaultOutputFormat
	}

	return &types.Request{
		Style:             types.StyleGenericCorrection,
		FreeformText:      text,
		CorrectionFocus:   focus,
		PreserveStructure: rawBool(raw, "preserve_structure", true),
		OutputFormat:      format,
	}, nil
}

// ValidatePlot handles plot generation. Genre, mood, and complexity are
// membership-checked against fixed option lists.
func (v *Validator) ValidatePlot(raw map[string]any) (*types.Request, error) {
	genre, err := pickOption(rawString(raw, "genre"), "genre", plotGenres)
	if err != nil {
		return nil, err
	}
	mood, err := pickOption(rawString(raw, "mood", "emotion"), "mood", plotMoods)
	if err != nil {
		return nil, err
	}
	complexity, err := pickOption(rawString(raw, "complexity"), "complexity", plotComplexities)
	if err != nil {
		return nil, err
	}

	corpus, err := v.resolveCorpus(raw, plotCorpus)
	if err != nil {
		return nil, err
	}

	return &types.Request{
		Style:         types.StylePlotSynopsis,
		Corpus:        corpus,
		EmotionOrMood: mood,
		Genre:         genre,
		Complexity:    complexity,
	}, nil
}

// resolveCorpus applies the default and checks the name is configured.
func (v *Validator) resolveCorpus(raw map[string]any, def string) (string, error) {
	corpus := rawString(raw, "corpus", "author")
	if corpus == "" {
		corpus = def
	}
	if !v.corpora.Known(corpus) {
		return "", types.E(types.ErrUnknownCorpus, "unknown corpus %q (known: %s)",
			corpus, strings.Join(v.corpora.ListKnown(), ", "))
	}
	return corpus, nil
}

// pickOption matches a value against a fixed option list,
// case-insensitively, returning the canonical spelling.
func pickOption(value, field string, options []string) (string, error) {
	for _, opt := range options {
		if strings.EqualFold(value, opt) {
			return opt, nil
		}
	}
	return "", types.E(types.ErrInvalidOption, "invalid %s %q (options: %s)",
		field, value, strings.Join(options, ", "))
}

// rawString returns the first present, non-blank string among keys.
func rawString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// rawStringSlice extracts a list of non-blank strings. Accepts a JSON
// array or a comma-separated string.
func rawStringSlice(raw map[string]any, key string) []string {
	var items []string
	switch v := raw[key].(type) {
	case []string:
		items = v
	case []any:
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Split(v, ",")
	}

	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// rawBool extracts a boolean, accepting bools and the usual string
// spellings.
func rawBool(raw map[string]any, key string, def bool) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}

// rawLineCount extracts and range-checks line_count, applying the
// default when absent.
func rawLineCount(raw map[string]any, def int) (int, error) {
	v, ok := raw["line_count"]
	if !ok {
		return def, nil
	}

	var n int
	switch value := v.(type) {
	case int:
		n = value
	case float64:
		n = int(value)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, types.E(types.ErrLineCountOutOfRange, "line_count %q is not a number", value)
		}
		n = parsed
	default:
		return 0, types.E(types.ErrLineCountOutOfRange, "line_count has unsupported type %T", v)
	}

	if n < types.MinLineCount || n > types.MaxLineCount {
		return 0, types.E(types.ErrLineCountOutOfRange, "line_count %d outside [%d,%d]",
			n, types.MinLineCount, types.MaxLineCount)
	}
	return n, nil
}
