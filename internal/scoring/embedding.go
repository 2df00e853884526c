package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/resumatch/internal/resume"
)

const (
	// SourceEmbedding tags results produced by EmbeddingRanker.
	SourceEmbedding = "embedding_similarity"

	// DefaultTopK is the number of matches returned by default.
	DefaultTopK = 5

	reasonSkills = 3
)

var (
	// ErrDimensionMismatch is returned when two vectors differ in length.
	ErrDimensionMismatch = errors.New("embedding dimensions do not match")
	// ErrEmptyVector is returned for a missing query or candidate vector.
	ErrEmptyVector = errors.New("empty embedding vector")
)

// Cosine returns the cosine similarity of a and b. A zero-norm vector has
// similarity zero with everything.
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Candidate is a stored resume together with its embedding.
type Candidate struct {
	ID     string
	Record resume.Record
	Vector []float64
}

// Match is one ranked candidate.
type Match struct {
	ID         string
	Record     resume.Record
	Similarity float64
	Result     resume.ScoreResult
}

// Ranking is the output of EmbeddingRanker.Rank. Skipped lists candidates
// whose vectors could not be compared with the query.
type Ranking struct {
	Matches []Match
	Skipped []string
}

// EmbeddingRanker orders candidates by cosine similarity to a query vector.
type EmbeddingRanker struct {
	// TopK bounds the number of matches; DefaultTopK when zero.
	TopK int
}

// Rank scores every candidate and returns the best TopK, highest first.
// Candidates with a missing or differently sized vector are skipped.
func (r EmbeddingRanker) Rank(query []float64, candidates []Candidate) (Ranking, error) {
	if len(query) == 0 {
		return Ranking{}, ErrEmptyVector
	}

	var out Ranking
	for _, c := range candidates {
		sim, err := Cosine(query, c.Vector)
		if err != nil {
			out.Skipped = append(out.Skipped, c.ID)
			continue
		}
		out.Matches = append(out.Matches, Match{
			ID:         c.ID,
			Record:     c.Record,
			Similarity: sim,
			Result: resume.ScoreResult{
				Score:  SimilarityScore(sim),
				Reason: MatchReason(c.Record),
				Source: SourceEmbedding,
			},
		})
	}

	sort.SliceStable(out.Matches, func(i, j int) bool {
		return out.Matches[i].Similarity > out.Matches[j].Similarity
	})

	k := r.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if len(out.Matches) > k {
		out.Matches = out.Matches[:k]
	}
	return out, nil
}

// SimilarityScore maps a cosine similarity onto the 0..100 display scale.
// Negative similarities and rounding noise above 1 are clamped.
func SimilarityScore(sim float64) int {
	return resume.ClampScore(int(sim * 100))
}

// MatchReason describes why a record was returned by a similarity search.
func MatchReason(rec resume.Record) string {
	var reasons []string

	if rec.Category != "" {
		reasons = append(reasons, fmt.Sprintf("Matching job category: %s.", rec.Category))
	}
	if len(rec.Skills) > 0 {
		top := rec.Skills
		if len(top) > reasonSkills {
			top = top[:reasonSkills]
		}
		reasons = append(reasons, fmt.Sprintf("Has relevant skills: %s.", strings.Join(top, ", ")))
	}
	if rec.Experience > 0 {
		reasons = append(reasons, fmt.Sprintf("%d years of experience.", rec.Experience))
	}
	if rec.EducationLevel != "" {
		reasons = append(reasons, fmt.Sprintf("%s degree.", rec.EducationLevel))
	}

	if len(reasons) == 0 {
		return "Matching content in resume."
	}
	return strings.Join(reasons, " ")
}
