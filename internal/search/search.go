// Package search scores the stored resume pool against a free-text query.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/scoring"
	"github.com/spigell/resumatch/internal/store"
	"github.com/spigell/resumatch/internal/utils"
)

// Type selects how resumes are scored.
type Type string

const (
	TypeKeyword   Type = "keyword"
	TypeEmbedding Type = "embedding"
	TypeLLM       Type = "llm"
)

const (
	// DefaultParallelism bounds concurrent scoring when no limit is configured.
	DefaultParallelism = 4
	// DefaultTimeout bounds a single model call made while searching or ingesting.
	DefaultTimeout = 30 * time.Second
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("search query is required")

// ParseType accepts a search type name. Empty means keyword.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeKeyword, nil
	case TypeKeyword, TypeEmbedding, TypeLLM:
		return t, nil
	default:
		return "", fmt.Errorf("unknown search type %q", s)
	}
}

// Pool lists stored resumes.
type Pool interface {
	List(ctx context.Context, filter store.Filter) ([]*store.Resume, error)
}

// Request is one search.
type Request struct {
	Query  string
	Type   Type
	Filter store.Filter
	// Limit caps the results. Zero keeps all of them, except for embedding
	// search which returns scoring.DefaultTopK.
	Limit int
}

// Result is one scored resume.
type Result struct {
	ID       string             `json:"id"`
	FileName string             `json:"fileName,omitempty"`
	Analysis resume.Analysis    `json:"analysis"`
	Score    resume.ScoreResult `json:"score"`
}

// Service runs searches over a Pool.
type Service struct {
	pool        Pool
	keyword     scoring.KeywordScorer
	scorer      ai.Scorer
	embedder    ai.Embedder
	parallelism int
	timeout     time.Duration
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithScorer enables LLM scoring.
func WithScorer(scorer ai.Scorer) Option {
	return func(s *Service) { s.scorer = scorer }
}

// WithEmbedder enables embedding search.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Service) { s.embedder = embedder }
}

// WithParallelism bounds how many resumes are scored at once.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithTimeout bounds each scoring and embedding call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(pool Pool, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{pool: pool, parallelism: DefaultParallelism, timeout: DefaultTimeout, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search scores the filtered pool and returns results by descending score.
func (s *Service) Search(ctx context.Context, req Request) ([]Result, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.Type == "" {
		req.Type = TypeKeyword
	}

	resumes, err := s.pool.List(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("load resume pool: %w", err)
	}

	s.logger.Debug("search",
		zap.String("type", string(req.Type)),
		zap.String("query", utils.TruncateForLog(req.Query, 100)),
		zap.Int("pool_size", len(resumes)),
	)

	var results []Result
	switch req.Type {
	case TypeKeyword:
		results, err = s.scoreAll(ctx, resumes, func(_ context.Context, r *store.Resume) resume.ScoreResult {
			return s.keyword.Score(req.Query, r.Analysis.Record)
		})
	case TypeLLM:
		results, err = s.scoreAll(ctx, resumes, func(ctx context.Context, r *store.Resume) resume.ScoreResult {
			return s.llmScore(ctx, req.Query, r)
		})
	case TypeEmbedding:
		return s.embeddingSearch(ctx, req, resumes)
	default:
		return nil, fmt.Errorf("unknown search type %q", req.Type)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score.Score > results[j].Score.Score
	})
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

type scoreFunc func(ctx context.Context, r *store.Resume) resume.ScoreResult

func (s *Service) scoreAll(ctx context.Context, resumes []*store.Resume, score scoreFunc) ([]Result, error) {
	results := make([]Result, len(resumes))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, r := range resumes {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				ID:       r.ID,
				FileName: r.FileName,
				Analysis: r.Analysis,
				Score:    score(gCtx, r),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score resumes: %w", err)
	}
	return results, nil
}

// llmScore asks the model for a score and falls back to keyword matching
// when the model is missing or fails.
func (s *Service) llmScore(ctx context.Context, query string, r *store.Resume) resume.ScoreResult {
	if s.scorer == nil || strings.TrimSpace(r.Text) == "" {
		return s.keyword.Score(query, r.Analysis.Record)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.scorer.Score(ctx, query, r.Text)
	if err != nil {
		s.logger.Warn("llm scoring failed, using keyword score",
			zap.String("resume_id", r.ID),
			zap.Error(err),
		)
		return s.keyword.Score(query, r.Analysis.Record)
	}
	return res
}

func (s *Service) embeddingSearch(ctx context.Context, req Request, resumes []*store.Resume) ([]Result, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("embedding search: %w", ai.ErrNotConfigured)
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, err := s.embedder.Embed(embedCtx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	byID := make(map[string]*store.Resume, len(resumes))
	candidates := make([]scoring.Candidate, 0, len(resumes))
	for _, r := range resumes {
		byID[r.ID] = r
		candidates = append(candidates, scoring.Candidate{ID: r.ID, Record: r.Analysis.Record, Vector: r.Embedding})
	}

	ranking, err := scoring.EmbeddingRanker{TopK: req.Limit}.Rank(query, candidates)
	if err != nil {
		return nil, fmt.Errorf("rank resumes: %w", err)
	}
	if len(ranking.Skipped) > 0 {
		s.logger.Warn("resumes without comparable embeddings skipped", zap.Strings("resume_ids", ranking.Skipped))
	}

	results := make([]Result, 0, len(ranking.Matches))
	for _, m := range ranking.Matches {
		r := byID[m.ID]
		results = append(results, Result{
			ID:       m.ID,
			FileName: r.FileName,
			Analysis: r.Analysis,
			Score:    m.Result,
		})
	}
	return results, nil
}
