// Package summary renders the short narrative attached to rule-based
// resume analyses.
package summary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/resumatch/internal/resume"
)

const (
	defaultName  = "Professional"
	maxTopSkills = 5
)

var (
	labeledName    = regexp.MustCompile(`(?i:name|contact)[\s:]+([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})`)
	standaloneName = regexp.MustCompile(`(?m)^[ \t]*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})[ \t]*$`)

	labeledRole     = regexp.MustCompile(`(?i)(?:current|present|latest|recent)[ \t]+(?:position|role|title)[: \t]+([A-Za-z ,\-&]+)`)
	capitalizedLine = regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Za-z \-]+?)[ \t]*$`)
)

// sectionHeaders are capitalized lines that never name a role.
var sectionHeaders = map[string]struct{}{
	"experience": {}, "work experience": {}, "professional experience": {}, "employment history": {},
	"education": {}, "skills": {}, "technical skills": {}, "core competencies": {},
	"summary": {}, "professional summary": {}, "profile": {}, "objective": {},
	"projects": {}, "certifications": {}, "contact": {}, "references": {},
	"languages": {}, "interests": {}, "achievements": {}, "awards": {}, "publications": {},
}

// Generate renders a summary from the extracted fields. Only the first five
// skills are mentioned.
func Generate(text string, skills []string, years int, level resume.EducationLevel, category string) string {
	name, nameLine := candidateName(text)
	role := recentRole(text, nameLine, category)

	top := skills
	if len(top) > maxTopSkills {
		top = top[:maxTopSkills]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is %s %s professional with %d years of experience. ", name, Seniority(years), category, years)
	if len(top) > 0 {
		fmt.Fprintf(&b, "Their background includes %s roles where they've applied skills in %s. ", role, strings.Join(top, ", "))
		fmt.Fprintf(&b, "They hold %s level education and demonstrate strong expertise in their field.", level)
	} else {
		fmt.Fprintf(&b, "Their background includes %s roles focusing on their area of expertise. ", role)
		fmt.Fprintf(&b, "They hold %s level education and are qualified for positions in this field.", level)
	}
	return b.String()
}

// Seniority describes a years-of-experience band with its article.
func Seniority(years int) string {
	switch {
	case years < 1:
		return "an entry-level"
	case years < 3:
		return "a junior"
	case years < 6:
		return "a mid-level"
	case years < 10:
		return "a senior"
	default:
		return "an experienced"
	}
}

// candidateName returns the first name of the candidate and the full line
// it was taken from. A labeled "Name:" wins over a standalone line.
func candidateName(text string) (string, string) {
	for _, p := range []*regexp.Regexp{labeledName, standaloneName} {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			full := strings.TrimSpace(m[1])
			if len(full) > 4 && len(full) < 40 {
				return strings.Fields(full)[0], full
			}
		}
	}
	return defaultName, ""
}

func recentRole(text, nameLine, category string) string {
	for _, m := range labeledRole.FindAllStringSubmatch(text, -1) {
		role := strings.TrimSpace(m[1])
		if plausibleTitle(role) {
			return role
		}
	}

	for _, m := range capitalizedLine.FindAllStringSubmatch(text, -1) {
		role := strings.TrimSpace(m[1])
		if role == nameLine || !plausibleTitle(role) {
			continue
		}
		if _, header := sectionHeaders[strings.ToLower(role)]; header {
			continue
		}
		return role
	}

	return category + " professional"
}

func plausibleTitle(s string) bool {
	return len(s) > 3 && len(s) < 40
}
