// Package engine orchestrates generation requests: validation, cache
// lookup, corpus retrieval, prompt composition, the backend call, and
// post-processing into structured results.
package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"musemind/internal/cache"
	"musemind/internal/corpus"
	"musemind/internal/prompts"
	"musemind/internal/providers"
	"musemind/internal/types"
)

// plotTopK is the retrieval depth the plot path uses regardless of the
// configured default.
const plotTopK = 5

// contextSeparator joins retrieved chunk texts into the prompt context.
const contextSeparator = "\n\n"

// Searcher runs similarity queries against a named corpus.
type Searcher interface {
	Search(ctx context.Context, name, query string, k int) ([]corpus.DocumentChunk, error)
}

// Params holds the sampling and retrieval settings applied to every
// request. Updated as a whole on config reload.
type Params struct {
	Provider    string
	TopK        int
	Temperature float64
	TopP        float64
	MaxTokens   int
	MaxRetries  int
}

// Config wires an Engine's dependencies.
type Config struct {
	Validator *Validator
	Searcher  Searcher
	Catalog   *prompts.Catalog
	Providers *providers.Registry
	Cache     *cache.Cache
	Calls     *CallLog
	Params    Params
	Logger    *slog.Logger
}

// Engine is the generation orchestrator. One request moves through
// validation, cache lookup, retrieval, prompt composition, the backend
// call, and post-processing; errors are classified, never cached.
type Engine struct {
	validator *Validator
	searcher  Searcher
	catalog   *prompts.Catalog
	providers *providers.Registry
	cache     *cache.Cache
	calls     *CallLog
	logger    *slog.Logger

	mu     sync.RWMutex
	params Params
}

// New creates an engine from its wired dependencies.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	calls := cfg.Calls
	if calls == nil {
		calls = NewCallLog(100)
	}
	return &Engine{
		validator: cfg.Validator,
		searcher:  cfg.Searcher,
		catalog:   cfg.Catalog,
		providers: cfg.Providers,
		cache:     cfg.Cache,
		calls:     calls,
		logger:    logger,
		params:    cfg.Params,
	}
}

// SetParams swaps the sampling parameters, used on config hot-reload.
func (e *Engine) SetParams(p Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p
}

// Submit is the UI boundary: a raw request map in, a primitive result
// map out. The "agent" field selects the entry point and defaults to
// the poem path.
func (e *Engine) Submit(ctx context.Context, raw map[string]any) map[string]any {
	agent := "poem"
	if a, ok := raw["agent"].(string); ok && strings.TrimSpace(a) != "" {
		agent = strings.ToLower(strings.TrimSpace(a))
	}

	var req *types.Request
	var err error
	switch agent {
	case "poem":
		req, err = e.validator.ValidatePoem(raw)
	case "morph":
		req, err = e.validator.ValidateMorph(raw)
	case "correct":
		req, err = e.validator.ValidateCorrection(raw)
	case "plot":
		req, err = e.validator.ValidatePlot(raw)
	default:
		err = types.E(types.ErrInternal, "unknown agent %q", agent)
	}
	if err != nil {
		return types.NewErrorResult(err).ToMap()
	}

	return e.Generate(ctx, req).ToMap()
}

// Generate runs one validated request through the pipeline.
func (e *Engine) Generate(ctx context.Context, req *types.Request) *types.Result {
	key := req.CacheKey()

	if cached, ok := e.cache.Get(key); ok {
		cached.Metadata["cached"] = true
		if age, known := e.cache.Age(key); known {
			cached.Metadata["cache_age_ms"] = age.Milliseconds()
		}
		return cached
	}

	chunks, err := e.retrieve(ctx, req)
	if err != nil {
		return types.NewErrorResult(err)
	}

	vars := composeVars(req, chunks)
	prompt, err := e.catalog.Render(req.Style, vars)
	if err != nil {
		// A validated request should always render; classify as
		// internal rather than user guidance.
		e.logger.Error("prompt render failed for validated request", "style", req.Style, "error", err)
		return types.NewErrorResult(types.E(types.ErrInternal, "prompt composition failed: %v", err))
	}

	e.mu.RLock()
	params := e.params
	e.mu.RUnlock()

	client, err := e.providers.Get(params.Provider)
	if err != nil {
		return types.NewErrorResult(types.E(types.ErrGenerationFailed, "provider %q not available", params.Provider))
	}

	requestID := uuid.New().String()
	genResult, genErr := client.Generate(ctx, &providers.GenerateRequest{
		Prompt:      prompt,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
		MaxRetries:  params.MaxRetries,
		RequestID:   requestID,
	})
	e.recordCall(requestID, genResult, genErr)
	if genErr != nil {
		return types.NewErrorResult(types.E(types.ErrGenerationFailed, "%v", genErr))
	}

	text := strings.TrimSpace(genResult.Text)
	lineCount := countNonBlankLines(text)

	res := &types.Result{
		Status:    types.StatusSuccess,
		Text:      text,
		LineCount: lineCount,
		Metadata: map[string]any{
			"style":                string(req.Style),
			"corpus":               req.Corpus,
			"requested_line_count": req.TargetLineCount,
			"actual_line_count":    lineCount,
			"chunks_retrieved":     len(chunks),
			"context_length":       contextLength(chunks),
			"request_id":           requestID,
			"provider":             genResult.Provider,
			"model":                genResult.ModelUsed,
			"timestamp":            time.Now().Format(time.RFC3339),
		},
	}

	e.cache.Put(key, res)
	return res
}

// retrieve fetches context chunks for the request. Retrieval is
// best-effort: an unavailable index or failed search degrades to empty
// context. Only a successful search returning zero chunks on the strict
// keyword-poem path is fatal.
func (e *Engine) retrieve(ctx context.Context, req *types.Request) ([]corpus.DocumentChunk, error) {
	if !req.Style.UsesRetrieval() {
		return nil, nil
	}

	e.mu.RLock()
	k := e.params.TopK
	e.mu.RUnlock()
	if req.Style == types.StylePlotSynopsis {
		k = plotTopK
	}
	if k <= 0 {
		k = 4
	}

	query := searchQuery(req)
	chunks, err := e.searcher.Search(ctx, req.Corpus, query, k)
	if err != nil {
		e.logger.Warn("retrieval degraded to empty context", "corpus", req.Corpus, "error", err)
		return nil, nil
	}

	if len(chunks) == 0 && req.Style.RequiresContext() {
		return nil, types.E(types.ErrNoContextFound, "no context found in corpus %q for query %q", req.Corpus, query)
	}
	return chunks, nil
}

func (e *Engine) recordCall(requestID string, res *providers.GenerateResult, err error) {
	call := Call{
		ID:        requestID,
		Timestamp: time.Now(),
		Success:   err == nil,
	}
	if res != nil {
		call.Provider = res.Provider
		call.Model = res.ModelUsed
		call.PromptTokens = res.PromptTokens
		call.CompletionTokens = res.CompletionTokens
		call.Attempts = res.Attempts
		call.LatencyMS = res.ExecutionTime.Milliseconds()
	}
	if err != nil {
		call.Error = err.Error()
	}
	e.calls.Record(call)
}

// Calls returns recent backend calls, newest first.
func (e *Engine) Calls() []Call {
	return e.calls.Recent()
}

// CacheStats reports the result cache contents.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops all cached results and returns the count dropped.
func (e *Engine) ClearCache() int {
	return e.cache.Clear()
}

// searchQuery builds the retrieval query for a request. The keyword
// path concatenates emotion and keywords, emotion first; the freeform
// and plot paths use their historical fixed probes.
func searchQuery(req *types.Request) string {
	switch {
	case req.Style.UsesKeywords():
		return strings.TrimSpace(req.EmotionOrMood + " " + strings.Join(req.Keywords, " "))
	case req.Style == types.StyleStructuredReflection:
		return "emotional, poetic"
	case req.Style == types.StylePhilosophicalReflection:
		return "philosophy, wisdom, contemplation"
	case req.Style == types.StylePlotSynopsis:
		return strings.TrimSpace(req.Genre + " " + req.EmotionOrMood + " " + req.Complexity)
	default:
		return req.EmotionOrMood
	}
}

// composeVars assembles the template variable map for the style.
func composeVars(req *types.Request, chunks []corpus.DocumentChunk) map[string]any {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	context := strings.Join(texts, contextSeparator)

	switch {
	case req.Style.UsesKeywords():
		return map[string]any{
			"context":    context,
			"keywords":   strings.Join(req.Keywords, ", "),
			"emotion":    req.EmotionOrMood,
			"line_count": strconv.Itoa(req.TargetLineCount),
		}
	case req.Style == types.StyleGenericCorrection:
		return map[string]any{
			"text":               req.FreeformText,
			"correction_focus":   req.CorrectionFocus,
			"preserve_structure": strconv.FormatBool(req.PreserveStructure),
		}
	case req.Style == types.StylePlotSynopsis:
		return map[string]any{
			"context":    context,
			"genre":      req.Genre,
			"mood":       req.EmotionOrMood,
			"complexity": req.Complexity,
		}
	default: // reflections
		return map[string]any{
			"raw_prompt": req.FreeformText,
			"context":    context,
		}
	}
}

// countNonBlankLines counts lines with non-whitespace content.
func countNonBlankLines(text string) int {
	if text == "" {
		return 0
	}
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

func contextLength(chunks []corpus.DocumentChunk) int {
	total := 0
	for _, c := range chunks {
		total += len(c.Text)
	}
	return total
}
