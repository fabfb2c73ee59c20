package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"musemind/internal/corpus"
	"musemind/internal/embedding"
)

const embedBatchSize = 16

// Builder turns a directory of plain-text source files into a persisted
// vector index readable by the corpus package.
type Builder struct {
	chunker  *Chunker
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewBuilder creates a builder using the given chunker and embedder.
func NewBuilder(chunker *Chunker, embedder embedding.Embedder, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		chunker:  chunker,
		embedder: embedder,
		logger:   logger,
	}
}

// Build reads every .txt file under inputDir, chunks and embeds the text,
// and writes the index for the named corpus to outputPath. It returns the
// number of chunks written.
func (b *Builder) Build(ctx context.Context, name, inputDir, outputPath string) (int, error) {
	texts, err := b.collectChunks(inputDir)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		return 0, fmt.Errorf("no text chunks found under %s", inputDir)
	}

	b.logger.Info("embedding corpus chunks",
		"corpus", name,
		"chunks", len(texts),
		"embedder", b.embedder.Name())

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := b.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return 0, fmt.Errorf("failed to embed batch at chunk %d: %w", start, err)
		}
		vectors = append(vectors, batch...)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := corpus.WriteIndex(outputPath, name, b.embedder.Name(), b.embedder.Dimensions(), texts, vectors); err != nil {
		return 0, err
	}

	b.logger.Info("wrote corpus index",
		"corpus", name,
		"path", outputPath,
		"chunks", len(texts))
	return len(texts), nil
}

// collectChunks chunks every .txt file under dir, walking subdirectories.
func (b *Builder) collectChunks(dir string) ([]string, error) {
	var texts []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		chunks := b.chunker.Chunk(string(data))
		b.logger.Debug("chunked source file", "file", path, "chunks", len(chunks))
		texts = append(texts, chunks...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return texts, nil
}
