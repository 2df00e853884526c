package store

import (
	"strings"

	"github.com/spigell/resumatch/internal/resume"
)

// Filter narrows the pool. Zero fields match everything.
type Filter struct {
	MinExperience  int                   `json:"minExperience,omitempty"`
	EducationLevel resume.EducationLevel `json:"educationLevel,omitempty"`
	Category       string                `json:"category,omitempty"`
	// Skills matches records having at least one of them, case-insensitively.
	Skills []string `json:"skills,omitempty"`
}

// Match reports whether rec passes every set criterion.
func (f Filter) Match(rec resume.Record) bool {
	if int(rec.Experience) < f.MinExperience {
		return false
	}
	if f.EducationLevel != "" && rec.EducationLevel != f.EducationLevel {
		return false
	}
	if f.Category != "" && !strings.EqualFold(rec.Category, f.Category) {
		return false
	}
	if len(f.Skills) == 0 {
		return true
	}

	have := make(map[string]struct{}, len(rec.Skills))
	for _, s := range rec.Skills {
		have[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range f.Skills {
		if _, ok := have[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}
