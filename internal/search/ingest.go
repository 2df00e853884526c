package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/store"
)

// Analyzer produces an analysis for resume text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (resume.Analysis, error)
}

// Saver persists a resume.
type Saver interface {
	Save(ctx context.Context, r *store.Resume) (string, error)
}

// Indexer analyses resumes and adds them to the pool.
type Indexer struct {
	analyzer Analyzer
	saver    Saver
	embedder ai.Embedder
	timeout  time.Duration
	logger   *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithEmbedTimeout bounds the embedding call made for each resume.
func WithEmbedTimeout(d time.Duration) IndexerOption {
	return func(ix *Indexer) {
		if d > 0 {
			ix.timeout = d
		}
	}
}

// NewIndexer builds an Indexer. embedder may be nil, in which case resumes
// are stored without a vector and are invisible to embedding search.
func NewIndexer(analyzer Analyzer, saver Saver, embedder ai.Embedder, logger *zap.Logger, opts ...IndexerOption) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ix := &Indexer{analyzer: analyzer, saver: saver, embedder: embedder, timeout: DefaultTimeout, logger: logger}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Ingest analyses text, embeds it when possible and saves the result.
func (ix *Indexer) Ingest(ctx context.Context, fileName, text string) (*store.Resume, error) {
	analysis, err := ix.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	r := &store.Resume{FileName: fileName, Text: text, Analysis: analysis}

	if ix.embedder != nil {
		vec, err := ix.embed(ctx, text)
		if err != nil {
			ix.logger.Warn("embedding failed, storing resume without it",
				zap.String("file", fileName),
				zap.Error(err),
			)
		} else {
			r.Embedding = vec
		}
	}

	if _, err := ix.saver.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("store %s: %w", fileName, err)
	}

	ix.logger.Info("resume ingested",
		zap.String("id", r.ID),
		zap.String("file", fileName),
		zap.String("source", analysis.Source),
		zap.String("category", analysis.Category),
		zap.Bool("embedded", len(r.Embedding) > 0),
	)
	return r, nil
}

func (ix *Indexer) embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()
	return ix.embedder.Embed(ctx, text)
}
