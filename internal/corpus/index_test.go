package corpus

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// stubEmbedder returns canned vectors by exact text match.
type stubEmbedder struct {
	vectors map[string][]float32
	dim     int
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, s.dim), nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dim }
func (s *stubEmbedder) Name() string    { return "stub" }

func writeIndexFile(t *testing.T, dir string, file indexFile) string {
	t.Helper()
	data, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("failed to marshal index: %v", err)
	}
	path := filepath.Join(dir, file.Corpus+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	emb := &stubEmbedder{dim: 3}

	t.Run("loads valid index", func(t *testing.T) {
		path := writeIndexFile(t, t.TempDir(), indexFile{
			Corpus:    "kafka",
			Model:     "stub",
			Dimension: 3,
			Chunks: []chunk{
				{Text: "one morning", Vector: []float32{1, 0, 0}},
				{Text: "gregor samsa", Vector: []float32{0, 1, 0}},
			},
		})

		idx, err := Open(path, "kafka", emb)
		if err != nil {
			t.Fatalf("failed to open index: %v", err)
		}
		if idx.Size() != 2 {
			t.Errorf("expected 2 chunks, got %d", idx.Size())
		}
		if idx.Name() != "kafka" {
			t.Errorf("expected name kafka, got %s", idx.Name())
		}
	})

	t.Run("rejects missing file", func(t *testing.T) {
		if _, err := Open(filepath.Join(t.TempDir(), "nope.json"), "nope", emb); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("rejects corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		os.WriteFile(path, []byte("not json"), 0644)
		if _, err := Open(path, "bad", emb); err == nil {
			t.Error("expected error for corrupt file")
		}
	})

	t.Run("rejects dimension mismatch", func(t *testing.T) {
		path := writeIndexFile(t, t.TempDir(), indexFile{
			Corpus:    "bad",
			Dimension: 3,
			Chunks:    []chunk{{Text: "x", Vector: []float32{1, 0}}},
		})
		if _, err := Open(path, "bad", emb); err == nil {
			t.Error("expected error for chunk dimension mismatch")
		}
	})
}

func TestIndex_Search(t *testing.T) {
	emb := &stubEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			"morning query": {1, 0, 0},
		},
	}

	path := writeIndexFile(t, t.TempDir(), indexFile{
		Corpus:    "kafka",
		Dimension: 3,
		Chunks: []chunk{
			{Text: "one morning", Vector: []float32{0.9, 0.1, 0}},
			{Text: "gregor samsa", Vector: []float32{0, 1, 0}},
			{Text: "uneasy dreams", Vector: []float32{0.5, 0.5, 0}},
		},
	})

	idx, err := Open(path, "kafka", emb)
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		results, err := idx.Search(context.Background(), "morning query", 2)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Text != "one morning" {
			t.Errorf("expected best match 'one morning', got %q", results[0].Text)
		}
		if results[0].Score < results[1].Score {
			t.Error("results not sorted by score")
		}
		if results[0].Corpus != "kafka" {
			t.Errorf("expected corpus kafka, got %s", results[0].Corpus)
		}
	})

	t.Run("caps k to index size", func(t *testing.T) {
		results, err := idx.Search(context.Background(), "morning query", 10)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
	})

	t.Run("zero query vector yields no results", func(t *testing.T) {
		results, err := idx.Search(context.Background(), "unmapped text", 2)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})
}
