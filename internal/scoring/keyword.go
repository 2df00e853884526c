// Package scoring computes relevance scores between a free-text query and
// analysed resumes, either by weighted keyword matching or by embedding
// similarity.
package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/resumatch/internal/resume"
)

const (
	// SourceKeyword tags results produced by KeywordScorer.
	SourceKeyword = "keyword_matching"

	noKeywordMatch = "No specific match reasons found for keyword search."

	summaryWeight    = 0.4
	skillsWeight     = 0.3
	experienceWeight = 0.2
	educationWeight  = 0.1
)

var (
	queryWord          = regexp.MustCompile(`\b\w+\b`)
	requiredExperience = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?(?: experience)?`)
	degreeWords        = []string{"master", "bachelor", "phd"}
)

// KeywordScorer scores a resume against a query with four weighted signals:
// summary keywords, matching skills, experience and education level.
type KeywordScorer struct{}

// Score returns a result in [0,100]. It never fails.
func (KeywordScorer) Score(query string, rec resume.Record) resume.ScoreResult {
	var (
		total   float64
		reasons []string
	)

	if s, reason := summarySignal(query, rec.Summary); s > 0 {
		total += s * summaryWeight
		reasons = append(reasons, reason)
	}
	if s, reason := skillsSignal(query, rec.Skills); s > 0 {
		total += s * skillsWeight
		reasons = append(reasons, reason)
	}
	if s, reason := experienceSignal(query, int(rec.Experience)); s > 0 {
		total += s * experienceWeight
		reasons = append(reasons, reason)
	}
	if s, reason := educationSignal(query, string(rec.EducationLevel)); s > 0 {
		total += s * educationWeight
		reasons = append(reasons, reason)
	}

	reason := noKeywordMatch
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return resume.ScoreResult{
		Score:  resume.ClampScore(int(total)),
		Reason: reason,
		Source: SourceKeyword,
	}
}

func summarySignal(query, summary string) (float64, string) {
	if summary == "" {
		return 0, ""
	}

	lower := strings.ToLower(summary)
	hits := 0
	for _, word := range queryWord.FindAllString(query, -1) {
		if len(word) > 2 && strings.Contains(lower, strings.ToLower(word)) {
			hits++
		}
	}

	return float64(min(hits*10, 100)), fmt.Sprintf("Summary relevance: %d keyword(s) matched.", hits)
}

func skillsSignal(query string, skills []string) (float64, string) {
	var tokens []string
	for _, tok := range strings.Split(query, " ") {
		if tok = strings.ToLower(strings.TrimSpace(tok)); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	var matched []string
	for _, skill := range skills {
		lower := strings.ToLower(skill)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				matched = append(matched, skill)
				break
			}
		}
	}

	return float64(min(len(matched)*20, 100)),
		fmt.Sprintf("Skills match: %d relevant skill(s) found: %s.", len(matched), strings.Join(matched, ", "))
}

// RequiredYears parses a required experience figure such as "3+ years" from
// a query. It returns zero when the query names none.
func RequiredYears(query string) int {
	m := requiredExperience.FindStringSubmatch(query)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func experienceSignal(query string, years int) (float64, string) {
	required := RequiredYears(query)

	switch {
	case years >= required:
		return 100, fmt.Sprintf("Experience: Matches required %d+ years.", required)
	case years > 0 && required > 0:
		return float64(years) / float64(required) * 100,
			fmt.Sprintf("Experience: %d years, %d years required.", years, required)
	default:
		return 0, ""
	}
}

func educationSignal(query, level string) (float64, string) {
	q := strings.ToLower(query)
	l := strings.ToLower(level)

	score := 0.0
	mentioned := false
	for _, word := range degreeWords {
		if !strings.Contains(q, word) {
			continue
		}
		mentioned = true
		if strings.Contains(l, word) {
			score = 100
			break
		}
	}
	if !mentioned && l != "" {
		score = 50
	}

	if level == "" {
		level = "N/A"
	}
	return score, fmt.Sprintf("Education: %s matches query.", level)
}
