// Package corpus loads persisted vector indexes and serves similarity
// search over literary source texts.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"musemind/internal/embedding"
)

// ErrIndexUnavailable is returned when a corpus is configured but its
// index could not be loaded or is not in memory.
var ErrIndexUnavailable = errors.New("corpus index unavailable")

// DocumentChunk is one retrieved passage with its provenance.
type DocumentChunk struct {
	Text   string  `json:"text"`
	Corpus string  `json:"corpus"`
	Score  float64 `json:"score"`
}

// chunk is one indexed passage with its embedding.
type chunk struct {
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// indexFile is the on-disk JSON layout written by the indexer.
type indexFile struct {
	Corpus    string  `json:"corpus"`
	Model     string  `json:"model"`
	Dimension int     `json:"dimension"`
	Chunks    []chunk `json:"chunks"`
}

// Index is an in-memory vector index over one corpus.
type Index struct {
	name      string
	model     string
	dimension int
	chunks    []chunk
	norms     []float64
	embedder  embedding.Embedder
}

// Open reads a persisted index from disk and prepares it for search.
// Chunk norms are precomputed so searches only pay for dot products.
func Open(path, name string, embedder embedding.Embedder) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}
	if file.Dimension <= 0 {
		return nil, fmt.Errorf("index %s has invalid dimension %d", path, file.Dimension)
	}
	for i, c := range file.Chunks {
		if len(c.Vector) != file.Dimension {
			return nil, fmt.Errorf("index %s chunk %d has dimension %d, want %d", path, i, len(c.Vector), file.Dimension)
		}
	}

	idx := &Index{
		name:      name,
		model:     file.Model,
		dimension: file.Dimension,
		chunks:    file.Chunks,
		norms:     make([]float64, len(file.Chunks)),
		embedder:  embedder,
	}
	for i, c := range file.Chunks {
		idx.norms[i] = norm(c.Vector)
	}

	return idx, nil
}

// Name returns the corpus name this index serves.
func (idx *Index) Name() string { return idx.name }

// Size returns the number of indexed chunks.
func (idx *Index) Size() int { return len(idx.chunks) }

// Search embeds the query and returns the top-k most similar chunks by
// cosine similarity. An empty result is not an error.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]DocumentChunk, error) {
	if k <= 0 {
		k = 4
	}
	if len(idx.chunks) == 0 {
		return nil, nil
	}

	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) != idx.dimension {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d", len(vec), idx.dimension)
	}

	qNorm := norm(vec)
	if qNorm == 0 {
		return nil, nil
	}

	scores := make([]float64, len(idx.chunks))
	for i, c := range idx.chunks {
		if idx.norms[i] == 0 {
			continue
		}
		scores[i] = dot(vec, c.Vector) / (qNorm * idx.norms[i])
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if k > len(order) {
		k = len(order)
	}
	results := make([]DocumentChunk, 0, k)
	for _, i := range order[:k] {
		results = append(results, DocumentChunk{
			Text:   idx.chunks[i].Text,
			Corpus: idx.name,
			Score:  scores[i],
		})
	}
	return results, nil
}

// WriteIndex persists an index file in the layout Open reads. texts and
// vectors must be parallel and every vector must have dim entries.
func WriteIndex(path, name, model string, dim int, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("texts and vectors length mismatch: %d != %d", len(texts), len(vectors))
	}
	file := indexFile{
		Corpus:    name,
		Model:     model,
		Dimension: dim,
		Chunks:    make([]chunk, len(texts)),
	}
	for i := range texts {
		if len(vectors[i]) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(vectors[i]), dim)
		}
		file.Chunks[i] = chunk{Text: texts[i], Vector: vectors[i]}
	}

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", path, err)
	}
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
