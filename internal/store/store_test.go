package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resumatch/internal/resume"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(memoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func analysis(category string, years int, level resume.EducationLevel, skills ...string) resume.Analysis {
	return resume.Analysis{
		Record: resume.Record{
			Summary:        category + " profile",
			Skills:         skills,
			Experience:     resume.Years(years),
			EducationLevel: level,
			Category:       category,
		},
		Source: "regex",
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := &Resume{
		FileName:  "jane.pdf",
		Text:      "Jane Roe, Python developer",
		Analysis:  analysis("Software Engineering", 6, resume.Masters, "Docker", "Python"),
		Embedding: []float64{0.1, -0.2, 0.3},
	}
	id, err := s.Save(ctx, in)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, in.ID)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in.FileName, got.FileName)
	assert.Equal(t, in.Text, got.Text)
	assert.Equal(t, in.Analysis, got.Analysis)
	assert.Equal(t, in.Embedding, got.Embedding)
	assert.WithinDuration(t, in.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	s := newStore(t)

	bad := &Resume{Analysis: resume.Analysis{Record: resume.Record{Category: "X", EducationLevel: "Diploma"}}}
	_, err := s.Save(context.Background(), bad)
	assert.Error(t, err)
}

func TestSaveReplacesByID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	r := &Resume{ID: "fixed", Analysis: analysis("Finance", 2, resume.Bachelors)}
	_, err := s.Save(ctx, r)
	require.NoError(t, err)

	r.Analysis.Category = "Sales"
	_, err = s.Save(ctx, r)
	require.NoError(t, err)

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Sales", all[0].Analysis.Category)
	assert.Nil(t, all[0].Embedding)
}

func TestListFilters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := []*Resume{
		{ID: "a", Analysis: analysis("Software Engineering", 8, resume.Masters, "Kubernetes", "Python")},
		{ID: "b", Analysis: analysis("Data Science", 3, resume.PhD, "Python", "TensorFlow")},
		{ID: "c", Analysis: analysis("Marketing", 1, resume.Bachelors, "SEO")},
	}
	for i, r := range pool {
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	ids := func(f Filter) []string {
		res, err := s.List(ctx, f)
		require.NoError(t, err)
		out := make([]string, 0, len(res))
		for _, r := range res {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter{}))
	assert.Equal(t, []string{"a", "b"}, ids(Filter{MinExperience: 3}))
	assert.Equal(t, []string{"b"}, ids(Filter{EducationLevel: resume.PhD}))
	assert.Equal(t, []string{"c"}, ids(Filter{Category: "marketing"}))
	assert.Equal(t, []string{"a", "b"}, ids(Filter{Skills: []string{"python"}}))
	assert.Equal(t, []string{"a", "c"}, ids(Filter{Skills: []string{"seo", "KUBERNETES"}}))
	assert.Empty(t, ids(Filter{Skills: []string{"Rust"}}))
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, &Resume{Analysis: analysis("Sales", 4, resume.Associates)})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pool.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Save(context.Background(), &Resume{Analysis: analysis("Design", 2, resume.Bachelors, "Figma")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Figma"}, got.Analysis.Skills)

	_, err = Open(" ")
	assert.Error(t, err)
}

func TestListOrdersBySubSecondCreationTime(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)
	for _, r := range []*Resume{
		{ID: "later", CreatedAt: base.Add(120 * time.Millisecond)},
		{ID: "earlier", CreatedAt: base.Add(100 * time.Millisecond)},
		{ID: "first", CreatedAt: base},
	} {
		r.Analysis = analysis("Sales", 1, resume.Bachelors, "CRM")
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "earlier", got[1].ID)
	assert.Equal(t, "later", got[2].ID)
	assert.True(t, got[1].CreatedAt.Equal(base.Add(100*time.Millisecond)))
}
