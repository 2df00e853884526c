package extract

import (
	"regexp"

	"github.com/spigell/resumatch/internal/resume"
)

var educationPatterns = []struct {
	level   resume.EducationLevel
	pattern *regexp.Regexp
}{
	{resume.PhD, regexp.MustCompile(`\b(?:ph\.?d|doctor\s+of\s+philosophy|doctoral|doctorate)\b`)},
	{resume.Masters, regexp.MustCompile(`\b(?:master'?s?|m\.sc|m\.s|msc|m\.a|mba|m\.b\.a)\b`)},
	{resume.Bachelors, regexp.MustCompile(`\b(?:bachelor'?s?|ba|b\.a|bs|b\.s|b\.sc|bsc|b\.e|btech|b\.tech)\b`)},
	{resume.Associates, regexp.MustCompile(`\b(?:associate'?s\s+degree|associates?\s+(?:degree|of|in)|a\.a\.s|a\.a|a\.s)\b`)},
	{resume.HighSchool, regexp.MustCompile(`\b(?:high\s+school|secondary\s+school|diploma|g\.?e\.?d)\b`)},
}

var institutionPattern = regexp.MustCompile(`\b(?:university|college|institute)\b`)

var educationRules = buildEducationRules()

func buildEducationRules() []rule[resume.EducationLevel] {
	rules := make([]rule[resume.EducationLevel], 0, len(educationPatterns)+1)
	for _, ep := range educationPatterns {
		rules = append(rules, rule[resume.EducationLevel]{
			name: string(ep.level),
			apply: func(doc *Document) (resume.EducationLevel, bool) {
				return ep.level, ep.pattern.MatchString(doc.Normalized)
			},
		})
	}

	// An institution without a named degree most often means a bachelor's.
	rules = append(rules, rule[resume.EducationLevel]{
		name: "institution",
		apply: func(doc *Document) (resume.EducationLevel, bool) {
			return resume.Bachelors, institutionPattern.MatchString(doc.Normalized)
		},
	})
	return rules
}

// EducationLevel returns the highest education level mentioned, checking
// from PhD downwards. It defaults to High School.
func EducationLevel(doc *Document) resume.EducationLevel {
	level, _ := cascade(doc, educationRules, resume.HighSchool)
	return level
}
