package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resumatch/internal/resume"
)

func TestCosine(t *testing.T) {
	t.Parallel()

	sim, err := Cosine([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = Cosine([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	sim, err = Cosine([]float64{0, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.Zero(t, sim)

	_, err = Cosine([]float64{1, 0}, []float64{1, 0, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Cosine(nil, []float64{1})
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestEmbeddingRankerRank(t *testing.T) {
	t.Parallel()

	candidates := []Candidate{
		{ID: "same", Vector: []float64{1, 0}},
		{ID: "orthogonal", Vector: []float64{0, 1}},
		{ID: "opposite", Vector: []float64{-1, 0}},
		{ID: "wrong-size", Vector: []float64{1, 2, 3}},
		{ID: "missing", Vector: nil},
		{ID: "diagonal", Vector: []float64{1, 1}},
	}

	got, err := EmbeddingRanker{}.Rank([]float64{1, 0}, candidates)
	require.NoError(t, err)

	ids := make([]string, 0, len(got.Matches))
	scores := make([]int, 0, len(got.Matches))
	for _, m := range got.Matches {
		ids = append(ids, m.ID)
		scores = append(scores, m.Result.Score)
		assert.Equal(t, SourceEmbedding, m.Result.Source)
	}

	assert.Equal(t, []string{"same", "diagonal", "orthogonal", "opposite"}, ids)
	assert.Equal(t, []int{100, 70, 0, 0}, scores)
	assert.Equal(t, []string{"wrong-size", "missing"}, got.Skipped)
}

func TestEmbeddingRankerTopK(t *testing.T) {
	t.Parallel()

	candidates := make([]Candidate, 0, 8)
	for i := 0; i < 8; i++ {
		candidates = append(candidates, Candidate{ID: string(rune('a' + i)), Vector: []float64{1, float64(i)}})
	}

	got, err := EmbeddingRanker{}.Rank([]float64{1, 0}, candidates)
	require.NoError(t, err)
	require.Len(t, got.Matches, DefaultTopK)
	assert.Equal(t, "a", got.Matches[0].ID)

	got, err = EmbeddingRanker{TopK: 2}.Rank([]float64{1, 0}, candidates)
	require.NoError(t, err)
	assert.Len(t, got.Matches, 2)
}

func TestEmbeddingRankerEmptyQuery(t *testing.T) {
	t.Parallel()

	_, err := EmbeddingRanker{}.Rank(nil, []Candidate{{ID: "x", Vector: []float64{1}}})
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestSimilarityScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, SimilarityScore(-0.8))
	assert.Equal(t, 50, SimilarityScore(0.5))
	assert.Equal(t, 100, SimilarityScore(1.0000001))
}

func TestMatchReason(t *testing.T) {
	t.Parallel()

	rec := resume.Record{
		Skills:         []string{"Figma", "Photoshop", "Sketch", "Typography"},
		Experience:     4,
		EducationLevel: resume.Masters,
		Category:       "Design",
	}

	assert.Equal(t,
		"Matching job category: Design. Has relevant skills: Figma, Photoshop, Sketch. 4 years of experience. Master's degree.",
		MatchReason(rec))
	assert.Equal(t, "Matching content in resume.", MatchReason(resume.Record{}))
}
