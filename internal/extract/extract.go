// Package extract implements rule-based resume analysis: skills, years of
// experience, education level and job category are pulled out of plain text
// with pattern matching. Every extraction has a terminal default, so
// Extract never fails.
package extract

import (
	"strings"
	"time"

	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/summary"
	"github.com/spigell/resumatch/internal/textnorm"
)

// Document is the input shared by all sub-extractions.
type Document struct {
	// Original is the source text with line endings unified to "\n".
	Original string
	// Normalized is the textnorm form of Original.
	Normalized string
	// Year is the calendar year used for open-ended date ranges.
	Year int
}

// NewDocument prepares text for extraction relative to the given year.
func NewDocument(text string, year int) *Document {
	original := strings.ReplaceAll(text, "\r\n", "\n")
	original = strings.ReplaceAll(original, "\r", "\n")

	return &Document{
		Original:   original,
		Normalized: textnorm.Normalize(original),
		Year:       year,
	}
}

// Extractor runs the rule-based analysis.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used to resolve "present" and graduation years.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract analyses resume text and returns a complete record.
func (e *Extractor) Extract(text string) resume.Record {
	doc := NewDocument(text, e.now().Year())

	skills := Skills(doc)
	years := ExperienceYears(doc)
	level := EducationLevel(doc)
	category := Category(doc)

	return resume.Record{
		Summary:        summary.Generate(doc.Original, skills, years, level, category),
		Skills:         skills,
		Experience:     resume.Years(years),
		EducationLevel: level,
		Category:       category,
	}
}
