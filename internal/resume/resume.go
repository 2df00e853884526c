// Package resume defines the standardized analysis record shared by every
// analysis strategy, scorer and the resume pool store.
package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultCategory is used when no category signal is found.
	DefaultCategory = "Professional"

	// MaxSkills caps the number of skills kept on a record.
	MaxSkills = 15

	minSkillLen = 3
	maxSkillLen = 29
)

// EducationLevel is the highest completed education tier.
type EducationLevel string

const (
	HighSchool EducationLevel = "High School"
	Associates EducationLevel = "Associate's"
	Bachelors  EducationLevel = "Bachelor's"
	Masters    EducationLevel = "Master's"
	PhD        EducationLevel = "PhD"
)

// EducationLevels lists the levels from lowest to highest.
var EducationLevels = []EducationLevel{HighSchool, Associates, Bachelors, Masters, PhD}

// Valid reports whether e is one of the five fixed levels.
func (e EducationLevel) Valid() bool {
	for _, level := range EducationLevels {
		if e == level {
			return true
		}
	}
	return false
}

// StandardizeEducation maps free-form provider output onto a fixed level.
// Unknown values fall back to Bachelor's.
func StandardizeEducation(raw string) EducationLevel {
	level := EducationLevel(strings.TrimSpace(raw))
	if level.Valid() {
		return level
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "phd"), strings.Contains(lower, "ph.d"), strings.Contains(lower, "doctor"):
		return PhD
	case strings.Contains(lower, "master"), strings.Contains(lower, "mba"):
		return Masters
	case strings.Contains(lower, "bachelor"), containsWord(lower, "bs"), containsWord(lower, "ba"):
		return Bachelors
	case strings.Contains(lower, "associate"):
		return Associates
	case strings.Contains(lower, "high school"), containsWord(lower, "ged"):
		return HighSchool
	default:
		return Bachelors
	}
}

// Record is the structured result of analysing one resume.
type Record struct {
	Summary        string         `json:"summary"`
	Skills         []string       `json:"skills" validate:"max=15,dive,min=3,max=29"`
	Experience     Years          `json:"experience" validate:"gte=0"`
	EducationLevel EducationLevel `json:"educationLevel" validate:"education"`
	Category       string         `json:"category" validate:"required"`
}

// Analysis is a record together with the strategy that produced it.
type Analysis struct {
	Record
	Source string `json:"source"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("education", func(fl validator.FieldLevel) bool {
		return EducationLevel(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the record constraints.
func (r *Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid resume record: %w", err)
	}
	return nil
}

// Sanitize returns a copy of r that satisfies every record constraint:
// skills deduplicated, length-filtered, sorted and capped, experience
// non-negative, education one of the fixed levels and category non-empty.
func Sanitize(r Record) Record {
	out := Record{
		Summary:        strings.TrimSpace(r.Summary),
		Skills:         NormalizeSkills(r.Skills),
		Experience:     r.Experience,
		EducationLevel: r.EducationLevel,
		Category:       strings.TrimSpace(r.Category),
	}

	if out.Experience < 0 {
		out.Experience = 0
	}
	if !out.EducationLevel.Valid() {
		out.EducationLevel = StandardizeEducation(string(r.EducationLevel))
	}
	if out.Category == "" {
		out.Category = DefaultCategory
	}

	return out
}

// NormalizeSkills trims, deduplicates (case-sensitive), drops entries whose
// length is outside 3..29, sorts lexically and keeps at most MaxSkills.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if !ValidSkill(skill) {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}

	sort.Strings(out)
	if len(out) > MaxSkills {
		out = out[:MaxSkills]
	}
	return out
}

// ValidSkill reports whether a skill has an acceptable length in characters.
func ValidSkill(skill string) bool {
	n := utf8.RuneCountInString(skill)
	return n >= minSkillLen && n <= maxSkillLen
}

// Years is a non-negative count of years of experience. It decodes from JSON
// numbers as well as loose strings such as "5+" or "6 years"; anything that
// carries no number decodes as zero.
type Years int

var leadingNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseYears extracts a year count from loose text, defaulting to zero.
func ParseYears(s string) Years {
	s = strings.ReplaceAll(strings.TrimSpace(s), "+", "")
	match := leadingNumber.FindString(s)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || f < 0 {
		return 0
	}
	return Years(int(f))
}

// UnmarshalJSON implements json.Unmarshaler.
func (y *Years) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = ParseYears(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*y = 0
		return nil
	}
	if f < 0 {
		f = 0
	}
	*y = Years(int(f))
	return nil
}

// ScoreResult is the relevance of one resume to one query.
type ScoreResult struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
	Source string `json:"source"`
}

// ClampScore bounds a raw score to [0,100].
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

func containsWord(text, word string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if field == word {
			return true
		}
	}
	return false
}
