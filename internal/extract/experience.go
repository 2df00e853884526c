package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	minPlausibleYear   = 1950
	minGraduationYear  = 1980
	volumeWordsLarge   = 700
	volumeLinesLarge   = 70
	volumeWordsMedium  = 500
	volumeLinesMedium  = 50
	volumeYearsLarge   = 5
	volumeYearsMedium  = 3
	volumeYearsDefault = 1
)

// Interval is an employment span in calendar years.
type Interval struct {
	Start int
	End   int
}

var directExperiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s+years?(?:\s+of)?\s+experience`),
	regexp.MustCompile(`experience\s+(?:of\s+)?(\d+)\+?\s+years?`),
	regexp.MustCompile(`(?:over|more\s+than)\s+(\d+)\s+years?(?:\s+of)?\s+experience`),
	regexp.MustCompile(`(\d+)\s*\+\s*years?(?:\s+of)?\s+(?:industry|professional|work)`),
}

const monthName = `\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

var dateRangePatterns = []*regexp.Regexp{
	regexp.MustCompile(monthName + `\s+(\d{4})\s*(?:-|to)\s*(?:` + monthName + `\s+(\d{4})|present|current|now)`),
	regexp.MustCompile(`\b\d{1,2}/(\d{4})\s*(?:-|to)\s*(?:\d{1,2}/(\d{4})|present|current|now)`),
	regexp.MustCompile(`\b(\d{4})\s*(?:-|to)\s*(?:(\d{4})\b|present|current|now)`),
}

var graduationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`graduated\s+(?:in\s+|on\s+)?(\d{4})`),
	regexp.MustCompile(`class\s+of\s+(\d{4})`),
	regexp.MustCompile(`(?:degree|diploma|certificate)\s+(?:received|awarded|conferred)\s+(?:in\s+|on\s+)?(\d{4})`),
}

var experienceRules = []rule[int]{
	{name: "direct", apply: directExperience},
	{name: "date_ranges", apply: dateRangeExperience},
	{name: "graduation", apply: graduationExperience},
	{name: "volume", apply: volumeExperience},
}

// ExperienceYears estimates total years of professional experience.
func ExperienceYears(doc *Document) int {
	years, _ := cascade(doc, experienceRules, volumeYearsDefault)
	return years
}

func directExperience(doc *Document) (int, bool) {
	for _, p := range directExperiencePatterns {
		m := p.FindStringSubmatch(doc.Normalized)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

func dateRangeExperience(doc *Document) (int, bool) {
	return TotalYears(DateRanges(doc))
}

// DateRanges finds employment spans in the normalized text. Open ranges end
// at doc.Year. Spans that start before 1950 or end after next year are
// discarded as implausible.
func DateRanges(doc *Document) []Interval {
	var spans []Interval
	for _, p := range dateRangePatterns {
		for _, m := range p.FindAllStringSubmatchIndex(doc.Normalized, -1) {
			start, _ := strconv.Atoi(doc.Normalized[m[2]:m[3]])
			end := doc.Year
			if m[4] >= 0 {
				end, _ = strconv.Atoi(doc.Normalized[m[4]:m[5]])
			}
			if start < minPlausibleYear || end > doc.Year+1 {
				continue
			}
			spans = append(spans, Interval{Start: start, End: end})
		}
	}
	return spans
}

// TotalYears merges overlapping or back-to-back intervals and sums their
// lengths. Intervals that end before they start are ignored. The result is
// at least one when any valid interval exists.
func TotalYears(spans []Interval) (int, bool) {
	valid := make([]Interval, 0, len(spans))
	for _, s := range spans {
		if s.End >= s.Start {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return 0, false
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End < valid[j].End
	})

	current := valid[0]
	total := current.End - current.Start
	for _, s := range valid[1:] {
		if s.Start <= current.End+1 {
			if s.End > current.End {
				total += s.End - current.End
				current.End = s.End
			}
			continue
		}
		current = s
		total += s.End - s.Start
	}

	return max(total, 1), true
}

func graduationExperience(doc *Document) (int, bool) {
	for _, p := range graduationPatterns {
		m := p.FindStringSubmatch(doc.Normalized)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil || year < minGraduationYear || year > doc.Year {
			continue
		}
		return doc.Year - year, true
	}
	return 0, false
}

func volumeExperience(doc *Document) (int, bool) {
	words := len(strings.Fields(doc.Original))
	lines := strings.Count(doc.Original, "\n") + 1

	switch {
	case lines > volumeLinesLarge || words > volumeWordsLarge:
		return volumeYearsLarge, true
	case lines > volumeLinesMedium || words > volumeWordsMedium:
		return volumeYearsMedium, true
	default:
		return volumeYearsDefault, true
	}
}
