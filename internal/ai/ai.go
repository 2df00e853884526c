// Package ai holds the provider-neutral contracts for LLM-backed resume
// analysis, relevance scoring and embeddings, plus the prompt templates and
// response parsing shared by every provider.
package ai

import (
	"context"

	"github.com/spigell/resumatch/internal/resume"
)

// Input limits, in runes, applied before text is sent to a model.
const (
	AnalysisTextLimit = 6000
	LocalTextLimit    = 2000
	ScoreTextLimit    = 4000
	EmbedTextLimit    = 2000
)

// SourceLLMScore tags relevance scores produced by a model.
const SourceLLMScore = "openrouter_llm"

// Analyzer extracts a resume record from plain text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*resume.Record, error)
	Provider() string
	Model() string
}

// Scorer rates how well a resume matches a free-text job query.
type Scorer interface {
	Score(ctx context.Context, query, resumeText string) (resume.ScoreResult, error)
}

// Embedder converts text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Prober reports whether a provider is reachable and its model is usable.
type Prober interface {
	Probe(ctx context.Context) error
}
