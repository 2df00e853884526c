package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/scoring"
	"github.com/spigell/resumatch/internal/store"
)

type fakePool []*store.Resume

func (p fakePool) List(_ context.Context, f store.Filter) ([]*store.Resume, error) {
	var out []*store.Resume
	for _, r := range p {
		if f.Match(r.Analysis.Record) {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubScorer struct {
	mu       sync.Mutex
	scores   map[string]int
	fail     map[string]bool
	delay    time.Duration
	inFlight int32
	peak     int32
}

func (s *stubScorer) Score(_ context.Context, _ string, text string) (resume.ScoreResult, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)

	s.mu.Lock()
	if n > s.peak {
		s.peak = n
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail[text] {
		return resume.ScoreResult{}, ai.ErrRateLimited
	}
	return resume.ScoreResult{Score: s.scores[text], Reason: "llm", Source: ai.SourceLLMScore}, nil
}

type stubEmbedder struct {
	vec []float64
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float64, error) {
	return s.vec, s.err
}

func entry(id, text, summary string, years int, level resume.EducationLevel, category string, vec []float64, skills ...string) *store.Resume {
	return &store.Resume{
		ID:   id,
		Text: text,
		Analysis: resume.Analysis{
			Record: resume.Record{
				Summary:        summary,
				Skills:         skills,
				Experience:     resume.Years(years),
				EducationLevel: level,
				Category:       category,
			},
			Source: "regex",
		},
		Embedding: vec,
	}
}

func samplePool() fakePool {
	return fakePool{
		entry("c", "text-c", "", 0, resume.HighSchool, "Professional", []float64{0, 1}),
		entry("b", "text-b", "Marketing lead", 2, resume.Bachelors, "Marketing", []float64{3, 4}, "SEO"),
		entry("a", "text-a", "Python engineer", 6, resume.Masters, "Software Engineering", []float64{1, 0}, "Docker", "Python"),
		entry("d", "text-d", "Python intern", 1, resume.Bachelors, "Software Engineering", []float64{1, 0, 0}, "Python"),
		entry("e", "text-e", "No vector", 3, resume.Bachelors, "Software Engineering", nil, "Python"),
	}
}

func ids(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestParseType(t *testing.T) {
	for _, in := range []string{"keyword", "Embedding", " llm "} {
		_, err := ParseType(in)
		assert.NoError(t, err, in)
	}
	got, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeKeyword, got)

	_, err = ParseType("fuzzy")
	assert.Error(t, err)
}

func TestKeywordSearch(t *testing.T) {
	svc := New(samplePool(), nil)

	results, err := svc.Search(context.Background(), Request{Query: "python 5 years"})
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, "a", results[0].ID)
	for i, r := range results {
		assert.Equal(t, scoring.SourceKeyword, r.Score.Source)
		assert.GreaterOrEqual(t, r.Score.Score, 0)
		assert.LessOrEqual(t, r.Score.Score, 100)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Score.Score, r.Score.Score)
		}
	}

	limited, err := svc.Search(context.Background(), Request{Query: "python 5 years", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, ids(results[:2]), ids(limited))

	filtered, err := svc.Search(context.Background(), Request{
		Query:  "python",
		Filter: store.Filter{Category: "Software Engineering", MinExperience: 2},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "e"}, ids(filtered))
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	_, err := New(samplePool(), nil).Search(context.Background(), Request{Query: "  "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestLLMSearchFallsBackPerResume(t *testing.T) {
	scorer := &stubScorer{
		scores: map[string]int{"text-a": 90, "text-b": 70, "text-c": 10, "text-d": 40},
		fail:   map[string]bool{"text-e": true},
	}
	svc := New(samplePool(), nil, WithScorer(scorer))

	results, err := svc.Search(context.Background(), Request{Query: "python developer", Type: TypeLLM})
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, []string{"a", "b", "d"}, ids(results[:3]))

	for _, r := range results {
		if r.ID == "e" {
			assert.Equal(t, scoring.SourceKeyword, r.Score.Source)
		} else {
			assert.Equal(t, ai.SourceLLMScore, r.Score.Source)
		}
	}
}

func TestLLMSearchWithoutScorerUsesKeywords(t *testing.T) {
	results, err := New(samplePool(), nil).Search(context.Background(), Request{Query: "python", Type: TypeLLM})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, scoring.SourceKeyword, r.Score.Source)
	}
}

func TestParallelismIsBounded(t *testing.T) {
	var pool fakePool
	scores := map[string]int{}
	for i := 0; i < 12; i++ {
		id := string(rune('a' + i))
		pool = append(pool, entry(id, "text-"+id, "", 1, resume.Bachelors, "Sales", nil))
		scores["text-"+id] = i
	}
	scorer := &stubScorer{scores: scores, delay: 10 * time.Millisecond}
	svc := New(pool, nil, WithScorer(scorer), WithParallelism(3))

	results, err := svc.Search(context.Background(), Request{Query: "sales", Type: TypeLLM})
	require.NoError(t, err)
	require.Len(t, results, 12)
	assert.Equal(t, 11, results[0].Score.Score)
	assert.LessOrEqual(t, scorer.peak, int32(3))
	assert.Greater(t, scorer.peak, int32(0))
}

func TestEmbeddingSearch(t *testing.T) {
	svc := New(samplePool(), nil, WithEmbedder(stubEmbedder{vec: []float64{1, 0}}))

	results, err := svc.Search(context.Background(), Request{Query: "python", Type: TypeEmbedding})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(results))
	assert.Equal(t, 100, results[0].Score.Score)
	assert.Equal(t, 60, results[1].Score.Score)
	assert.Equal(t, 0, results[2].Score.Score)
	assert.Equal(t, scoring.SourceEmbedding, results[0].Score.Source)
	assert.True(t, strings.HasPrefix(results[0].Score.Reason, "Matching job category: Software Engineering."))

	top1, err := svc.Search(context.Background(), Request{Query: "python", Type: TypeEmbedding, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(top1))
}

func TestEmbeddingSearchErrors(t *testing.T) {
	_, err := New(samplePool(), nil).Search(context.Background(), Request{Query: "x", Type: TypeEmbedding})
	assert.ErrorIs(t, err, ai.ErrNotConfigured)

	boom := errors.New("boom")
	_, err = New(samplePool(), nil, WithEmbedder(stubEmbedder{err: boom})).
		Search(context.Background(), Request{Query: "x", Type: TypeEmbedding})
	assert.ErrorIs(t, err, boom)
}

type stubAnalyzer struct {
	analysis resume.Analysis
	err      error
}

func (s stubAnalyzer) Analyze(context.Context, string) (resume.Analysis, error) {
	return s.analysis, s.err
}

func TestIngest(t *testing.T) {
	pool, err := store.Open(":memory:")
	require.NoError(t, err)
	defer pool.Close()

	analysis := samplePool()[2].Analysis
	ix := NewIndexer(stubAnalyzer{analysis: analysis}, pool, stubEmbedder{vec: []float64{0.5, 0.5}}, nil)

	r, err := ix.Ingest(context.Background(), "jane.txt", "Jane Roe resume text")
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)

	stored, err := pool.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis, stored.Analysis)
	assert.Equal(t, []float64{0.5, 0.5}, stored.Embedding)
	assert.Equal(t, "jane.txt", stored.FileName)

	noVec := NewIndexer(stubAnalyzer{analysis: analysis}, pool, stubEmbedder{err: ai.ErrUnavailable}, nil)
	r, err = noVec.Ingest(context.Background(), "john.txt", "John resume text")
	require.NoError(t, err)
	assert.Empty(t, r.Embedding)

	failing := NewIndexer(stubAnalyzer{err: ai.ErrUnauthorized}, pool, nil, nil)
	_, err = failing.Ingest(context.Background(), "x.txt", "text")
	assert.ErrorIs(t, err, ai.ErrUnauthorized)
}

type hangingScorer struct{}

func (hangingScorer) Score(ctx context.Context, _, _ string) (resume.ScoreResult, error) {
	<-ctx.Done()
	return resume.ScoreResult{}, ctx.Err()
}

type hangingEmbedder struct{}

func (hangingEmbedder) Embed(ctx context.Context, _ string) ([]float64, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStalledModelCallsTimeOut(t *testing.T) {
	svc := New(samplePool(), nil,
		WithScorer(hangingScorer{}),
		WithEmbedder(hangingEmbedder{}),
		WithTimeout(20*time.Millisecond),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)

		results, err := svc.Search(context.Background(), Request{Query: "python", Type: TypeLLM})
		assert.NoError(t, err)
		assert.Len(t, results, 5)
		for _, r := range results {
			assert.Equal(t, scoring.SourceKeyword, r.Score.Source)
		}

		_, err = svc.Search(context.Background(), Request{Query: "python", Type: TypeEmbedding})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("search did not return after the model call timed out")
	}
}

func TestIngestWithStalledEmbedder(t *testing.T) {
	pool, err := store.Open(":memory:")
	require.NoError(t, err)
	defer pool.Close()

	ix := NewIndexer(stubAnalyzer{analysis: samplePool()[2].Analysis}, pool, hangingEmbedder{}, nil,
		WithEmbedTimeout(20*time.Millisecond))

	start := time.Now()
	r, err := ix.Ingest(context.Background(), "jane.txt", "Jane Roe resume text")
	require.NoError(t, err)
	assert.Empty(t, r.Embedding)
	assert.Less(t, time.Since(start), 5*time.Second)
}
