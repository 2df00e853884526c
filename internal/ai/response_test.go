package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resumatch/internal/resume"
)

func TestParseAnalysis(t *testing.T) {
	t.Parallel()

	clean := `{"summary":"Go developer","skills":["Go","Python","Docker","Docker"],"experience":5,"educationLevel":"Master's","category":"Software Engineering"}`

	tests := []struct {
		name   string
		raw    string
		expect resume.Record
	}{
		{
			name: "clean json",
			raw:  clean,
			expect: resume.Record{
				Summary: "Go developer", Skills: []string{"Docker", "Python"}, Experience: 5,
				EducationLevel: resume.Masters, Category: "Software Engineering",
			},
		},
		{
			name: "fenced with prose",
			raw:  "Here is the analysis:\n```json\n" + clean + "\n```\nLet me know.",
			expect: resume.Record{
				Summary: "Go developer", Skills: []string{"Docker", "Python"}, Experience: 5,
				EducationLevel: resume.Masters, Category: "Software Engineering",
			},
		},
		{
			name: "prose around object",
			raw:  "Sure! " + clean + " Hope this helps.",
			expect: resume.Record{
				Summary: "Go developer", Skills: []string{"Docker", "Python"}, Experience: 5,
				EducationLevel: resume.Masters, Category: "Software Engineering",
			},
		},
		{
			name: "truncated output",
			raw:  `{"summary": "Senior engineer", "skills": ["Kubernetes", "Terraform"`,
			expect: resume.Record{
				Summary: "Senior engineer", Skills: []string{"Kubernetes", "Terraform"},
				EducationLevel: resume.Bachelors, Category: resume.DefaultCategory,
			},
		},
		{
			name: "loose json",
			raw:  `{summary: 'Analyst', skills: 'Excel, SQL, Tableau', experience: '7 years', educationLevel: 'bachelors degree', category: 'Data Science',}`,
			expect: resume.Record{
				Summary: "Analyst", Skills: []string{"Excel", "SQL", "Tableau"}, Experience: 7,
				EducationLevel: resume.Bachelors, Category: "Data Science",
			},
		},
		{
			name: "aliased keys",
			raw:  `{"education_level":"PhD in Chemistry","years_of_experience":"12+","skills":"Go, Rust","category":null}`,
			expect: resume.Record{
				Skills: []string{"Rust"}, Experience: 12,
				EducationLevel: resume.PhD, Category: resume.DefaultCategory,
			},
		},
		{
			name: "negative experience and unknown education",
			raw:  `{"summary":"x","experience":-3,"educationLevel":"Other"}`,
			expect: resume.Record{
				Summary: "x", Skills: []string{}, EducationLevel: resume.Bachelors, Category: resume.DefaultCategory,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAnalysis(tt.raw)
			require.NoError(t, err)
			if len(tt.expect.Skills) == 0 {
				assert.Empty(t, got.Skills)
				tt.expect.Skills = got.Skills
			}
			assert.Equal(t, tt.expect, *got)
		})
	}
}

func TestParseAnalysisErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		expect error
	}{
		{name: "empty", raw: "  ", expect: ErrEmptyResponse},
		{name: "prose only", raw: "I cannot analyze this resume.", expect: ErrMalformedResponse},
		{name: "json null", raw: "null", expect: ErrMalformedResponse},
		{name: "unrelated object", raw: `{"error": "quota"}`, expect: ErrMalformedResponse},
		{name: "skills as object", raw: `{"skills": {"go": true}}`, expect: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAnalysis(tt.raw)
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestSalvageAnalysis(t *testing.T) {
	t.Parallel()

	raw := `Result -> "summary": "Registered nurse", "skills": ["Triage", "Patient Care"], "experience": "4", "category": "Healthcare"`

	_, err := ParseAnalysis(raw)
	require.ErrorIs(t, err, ErrMalformedResponse)

	got, err := SalvageAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "Registered nurse", got.Summary)
	assert.Equal(t, []string{"Patient Care", "Triage"}, got.Skills)
	assert.Equal(t, resume.Years(4), got.Experience)
	assert.Equal(t, resume.Bachelors, got.EducationLevel)
	assert.Equal(t, "Healthcare", got.Category)

	_, err = SalvageAnalysis("nothing useful here")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		score  int
		reason string
	}{
		{name: "plain", raw: `{"score": 85, "reason": "Strong Go background"}`, score: 85, reason: "Strong Go background"},
		{name: "string score above range", raw: `{"score": "120"}`, score: 100, reason: noLLMReason},
		{name: "negative", raw: `{"score": -5, "reason": "none"}`, score: 0, reason: "none"},
		{name: "percent", raw: "```json\n{\"score\": \"72%\", \"reason\": \"ok\"}\n```", score: 72, reason: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseScore(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, SourceLLMScore, got.Source)
		})
	}

	_, err := ParseScore(`{"reason": "no score"}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseScore("")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCloseOpen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a": 1}`, closeOpen(`{"a": 1}`))
	assert.Equal(t, `{"a": "b}"}`, closeOpen(`{"a": "b}`))
	assert.Equal(t, `{"a": [1, {"b": 2}]}`, closeOpen(`{"a": [1, {"b": 2`))
	assert.Equal(t, `{"a": "x\"y"}`, closeOpen(`{"a": "x\"y`))
}
