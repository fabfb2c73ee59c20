package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"musemind/internal/cache"
	"musemind/internal/corpus"
	"musemind/internal/prompts"
	"musemind/internal/providers"
	"musemind/internal/types"
)

// captureClient records prompts so tests can inspect what generation
// was asked to do.
type captureClient struct {
	response string
	fail     bool
	calls    atomic.Int64

	lastPrompt string
}

func (c *captureClient) Name() string { return "capture" }

func (c *captureClient) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResult, error) {
	c.calls.Add(1)
	c.lastPrompt = req.Prompt
	result := &providers.GenerateResult{
		Provider:  c.Name(),
		ModelUsed: "capture-model",
		RequestID: req.RequestID,
		Attempts:  1,
	}
	if c.fail {
		result.ErrorMessage = "backend down"
		return result, types.E(types.ErrGenerationFailed, "backend down")
	}
	result.Success = true
	result.Text = c.response
	return result, nil
}

// recordingSearcher serves canned chunks and counts searches.
type recordingSearcher struct {
	chunks []corpus.DocumentChunk
	err    error
	calls  atomic.Int64

	lastQuery string
	lastK     int
}

func (s *recordingSearcher) Search(ctx context.Context, name, query string, k int) ([]corpus.DocumentChunk, error) {
	s.calls.Add(1)
	s.lastQuery = query
	s.lastK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

func kafkaChunks() []corpus.DocumentChunk {
	return []corpus.DocumentChunk{
		{Text: "one morning gregor samsa woke", Corpus: "kafka", Score: 0.9},
		{Text: "from uneasy dreams", Corpus: "kafka", Score: 0.8},
	}
}

func newTestEngine(t *testing.T, client *captureClient, searcher *recordingSearcher) *Engine {
	t.Helper()

	catalog, err := prompts.NewCatalog()
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	registry := providers.NewRegistry()
	registry.Register("capture", client)

	corpora := &stubCatalog{names: []string{"kafka", "dostoyevsky", "rumi", "philosophy", "plot_ideas"}}

	return New(Config{
		Validator: NewValidator(corpora),
		Searcher:  searcher,
		Catalog:   catalog,
		Providers: registry,
		Cache:     cache.New(),
		Params: Params{
			Provider:    "capture",
			TopK:        4,
			Temperature: 0.8,
			TopP:        0.95,
			MaxTokens:   700,
			MaxRetries:  4,
		},
	})
}

func TestSubmit_UnknownStyleShortCircuits(t *testing.T) {
	client := &captureClient{response: "a poem"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	out := e.Submit(context.Background(), map[string]any{
		"agent":    "poem",
		"keywords": []any{"night"},
		"style":    "epic",
	})

	if out["status"] != "error" || out["error_kind"] != "unknown_style" {
		t.Errorf("unexpected result: %v", out)
	}
	if client.calls.Load() != 0 {
		t.Errorf("expected zero backend calls, got %d", client.calls.Load())
	}
	if searcher.calls.Load() != 0 {
		t.Errorf("expected zero searches, got %d", searcher.calls.Load())
	}
}

func TestSubmit_EmptyInputShortCircuits(t *testing.T) {
	client := &captureClient{response: "a poem"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	out := e.Submit(context.Background(), map[string]any{
		"agent":    "poem",
		"keywords": []any{"  "},
	})

	if out["status"] != "error" || out["error_kind"] != "empty_input" {
		t.Errorf("unexpected result: %v", out)
	}
	if client.calls.Load() != 0 {
		t.Errorf("expected zero backend calls, got %d", client.calls.Load())
	}
}

func TestSubmit_CacheIdempotence(t *testing.T) {
	client := &captureClient{response: "line one\nline two"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	raw := map[string]any{
		"agent":    "poem",
		"keywords": []any{"night", "rain"},
		"emotion":  "melancholy",
		"style":    "free_verse",
	}

	first := e.Submit(context.Background(), raw)
	second := e.Submit(context.Background(), raw)

	if first["status"] != "success" || second["status"] != "success" {
		t.Fatalf("unexpected statuses: %v / %v", first["status"], second["status"])
	}
	if first["text"] != second["text"] {
		t.Error("cached result text differs from original")
	}
	if client.calls.Load() != 1 {
		t.Errorf("expected exactly one backend call across both submissions, got %d", client.calls.Load())
	}
	if searcher.calls.Load() != 1 {
		t.Errorf("expected exactly one search across both submissions, got %d", searcher.calls.Load())
	}

	meta, ok := second["metadata"].(map[string]any)
	if !ok || meta["cached"] != true {
		t.Errorf("expected cached flag on second result, got %v", second["metadata"])
	}
	age, ok := meta["cache_age_ms"].(int64)
	if !ok || age < 0 {
		t.Errorf("expected non-negative cache_age_ms on cached result, got %v", meta["cache_age_ms"])
	}
}

func TestSubmit_CacheKeyIgnoresMapOrdering(t *testing.T) {
	client := &captureClient{response: "a poem"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	e.Submit(context.Background(), map[string]any{
		"agent": "poem", "keywords": []any{"sea", "salt"}, "emotion": "calm", "corpus": "rumi", "line_count": 6,
	})
	e.Submit(context.Background(), map[string]any{
		"line_count": 6, "corpus": "rumi", "emotion": "calm", "keywords": []any{"sea", "salt"}, "agent": "poem",
	})

	if client.calls.Load() != 1 {
		t.Errorf("expected one backend call for reordered-but-equal requests, got %d", client.calls.Load())
	}
}

func TestSubmit_DegradedRetrieval(t *testing.T) {
	client := &captureClient{response: "a poem without context"}
	searcher := &recordingSearcher{err: corpus.ErrIndexUnavailable}
	e := newTestEngine(t, client, searcher)

	out := e.Submit(context.Background(), map[string]any{
		"agent":    "poem",
		"keywords": []any{"night"},
	})

	if out["status"] != "success" {
		t.Fatalf("expected success in degraded mode, got %v", out)
	}
	// The prompt must carry an empty context block, not fail.
	if !strings.Contains(client.lastPrompt, "Context from literary works:\n\n\nKeywords") {
		t.Errorf("expected empty context in prompt, got:\n%s", client.lastPrompt)
	}

	meta := out["metadata"].(map[string]any)
	if meta["chunks_retrieved"] != 0 {
		t.Errorf("expected zero chunks in metadata, got %v", meta["chunks_retrieved"])
	}
}

func TestSubmit_NoContextFound(t *testing.T) {
	t.Run("fatal on strict keyword path", func(t *testing.T) {
		client := &captureClient{response: "a poem"}
		searcher := &recordingSearcher{} // successful search, zero chunks
		e := newTestEngine(t, client, searcher)

		out := e.Submit(context.Background(), map[string]any{
			"agent":    "poem",
			"keywords": []any{"night"},
		})

		if out["status"] != "error" || out["error_kind"] != "no_context_found" {
			t.Errorf("unexpected result: %v", out)
		}
		if client.calls.Load() != 0 {
			t.Errorf("expected zero backend calls, got %d", client.calls.Load())
		}
	})

	t.Run("tolerated on raw-thought path", func(t *testing.T) {
		client := &captureClient{response: "a reflection"}
		searcher := &recordingSearcher{}
		e := newTestEngine(t, client, searcher)

		out := e.Submit(context.Background(), map[string]any{
			"agent": "morph",
			"text":  "everything feels distant today",
		})

		if out["status"] != "success" {
			t.Errorf("expected success, got %v", out)
		}
	})
}

func TestSubmit_HaikuScenario(t *testing.T) {
	client := &captureClient{response: "an old silent pond\na frog jumps into the pond\nsplash, silence again"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	out := e.Submit(context.Background(), map[string]any{
		"agent":      "poem",
		"style":      "Haiku",
		"corpus":     "kafka",
		"keywords":   []any{"spring", "cherry blossom"},
		"emotion":    "Joy",
		"line_count": 3,
	})

	if out["status"] != "success" {
		t.Fatalf("expected success, got %v", out)
	}
	if out["line_count"] != 3 {
		t.Errorf("expected actual line count 3, got %v", out["line_count"])
	}
	if searcher.lastQuery != "Joy spring cherry blossom" {
		t.Errorf("unexpected search query: %q", searcher.lastQuery)
	}
}

func TestSubmit_GenerationFailure(t *testing.T) {
	client := &captureClient{fail: true}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	raw := map[string]any{"agent": "poem", "keywords": []any{"night"}}

	out := e.Submit(context.Background(), raw)
	if out["status"] != "error" || out["error_kind"] != "generation_failed" {
		t.Fatalf("unexpected result: %v", out)
	}

	// Errors are never cached: a retry must reach the backend again.
	client.fail = false
	client.response = "recovered"
	out = e.Submit(context.Background(), raw)
	if out["status"] != "success" || out["text"] != "recovered" {
		t.Errorf("expected fresh success after failure, got %v", out)
	}
	if client.calls.Load() != 2 {
		t.Errorf("expected 2 backend calls, got %d", client.calls.Load())
	}
}

func TestSubmit_CorrectionSkipsRetrieval(t *testing.T) {
	client := &captureClient{response: "a corrected poem"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	out := e.Submit(context.Background(), map[string]any{
		"agent": "correct",
		"text":  "a poem with erors",
	})

	if out["status"] != "success" {
		t.Fatalf("expected success, got %v", out)
	}
	if searcher.calls.Load() != 0 {
		t.Errorf("correction path should not search, got %d searches", searcher.calls.Load())
	}
	if !strings.Contains(client.lastPrompt, "a poem with erors") {
		t.Error("expected submitted text in prompt")
	}
	if !strings.Contains(client.lastPrompt, "grammar and flow") {
		t.Error("expected default correction focus in prompt")
	}
}

func TestSubmit_PlotUsesDeeperRetrieval(t *testing.T) {
	client := &captureClient{response: "**TITLE:** The Hollow Lighthouse"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	out := e.Submit(context.Background(), map[string]any{
		"agent":      "plot",
		"genre":      "Mystery",
		"mood":       "Melancholic",
		"complexity": "moderate",
	})

	if out["status"] != "success" {
		t.Fatalf("expected success, got %v", out)
	}
	if searcher.lastK != 5 {
		t.Errorf("expected k=5 for plot retrieval, got %d", searcher.lastK)
	}
	if searcher.lastQuery != "Mystery Melancholic moderate" {
		t.Errorf("unexpected query: %q", searcher.lastQuery)
	}
}

func TestSubmit_UnknownAgent(t *testing.T) {
	client := &captureClient{response: "x"}
	e := newTestEngine(t, client, &recordingSearcher{})

	out := e.Submit(context.Background(), map[string]any{"agent": "dream"})
	if out["status"] != "error" || out["error_kind"] != "internal" {
		t.Errorf("unexpected result: %v", out)
	}
}

func TestEngine_CallLog(t *testing.T) {
	client := &captureClient{response: "a poem"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	e.Submit(context.Background(), map[string]any{"agent": "poem", "keywords": []any{"night"}})

	calls := e.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 recorded call, got %d", len(calls))
	}
	if !calls[0].Success || calls[0].Provider != "capture" {
		t.Errorf("unexpected call record: %+v", calls[0])
	}
}

func TestEngine_ClearCache(t *testing.T) {
	client := &captureClient{response: "a poem"}
	searcher := &recordingSearcher{chunks: kafkaChunks()}
	e := newTestEngine(t, client, searcher)

	raw := map[string]any{"agent": "poem", "keywords": []any{"night"}}
	e.Submit(context.Background(), raw)

	if stats := e.CacheStats(); stats.Size != 1 {
		t.Fatalf("expected 1 cached entry, got %d", stats.Size)
	}
	if n := e.ClearCache(); n != 1 {
		t.Errorf("expected 1 dropped entry, got %d", n)
	}

	e.Submit(context.Background(), raw)
	if client.calls.Load() != 2 {
		t.Errorf("expected backend call after cache clear, got %d total", client.calls.Load())
	}
}

func TestCountNonBlankLines(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one line", 1},
		{"a\nb\nc", 3},
		{"a\n\n  \nb", 2},
		{"\n\na\n", 1},
	}
	for _, tt := range tests {
		if got := countNonBlankLines(tt.text); got != tt.want {
			t.Errorf("countNonBlankLines(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
