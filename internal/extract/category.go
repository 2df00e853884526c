package extract

import (
	"regexp"
	"strings"

	"github.com/spigell/resumatch/internal/resume"
)

// strongSignal is the keyword count below which job titles are consulted.
const strongSignal = 3

type category struct {
	name     string
	keywords []string
	patterns []*regexp.Regexp
}

// categories is ordered; ties keep the earlier entry.
var categories = compileCategories([]category{
	{name: "Software Engineering", keywords: []string{
		"software engineer", "developer", "programmer", "coding", "java", "python", "c#",
		"javascript", "react", "angular", "vue", "web development", "frontend", "backend",
		"full stack", "mobile app", "android", "ios", "api", "agile", "scrum", "devops",
	}},
	{name: "Data Science", keywords: []string{
		"data scientist", "machine learning", "ml", "ai", "artificial intelligence", "deep learning",
		"statistics", "statistical analysis", "r", "python", "pandas", "numpy", "tensorflow",
		"pytorch", "data mining", "data analysis", "big data", "data visualization", "model",
	}},
	{name: "Data Engineering", keywords: []string{
		"data engineer", "data pipeline", "etl", "hadoop", "spark", "kafka", "data warehouse",
		"data modeling", "sql", "database", "nosql", "data infrastructure", "airflow",
	}},
	{name: "Project Management", keywords: []string{
		"project manager", "product manager", "program manager", "agile", "scrum", "kanban",
		"waterfall", "pmp", "prince2", "stakeholder", "requirement", "roadmap", "timeline",
		"project plan", "risk management", "delivery", "milestone",
	}},
	{name: "Marketing", keywords: []string{
		"marketing", "seo", "sem", "digital marketing", "content marketing", "social media",
		"campaign", "analytics", "advertising", "market research", "brand", "content strategy",
		"google analytics", "conversion rate", "growth hacking", "customer acquisition",
	}},
	{name: "Sales", keywords: []string{
		"sales", "account executive", "business development", "customer acquisition", "lead generation",
		"sales funnel", "crm", "salesforce", "negotiation", "cold calling", "relationship building",
		"revenue", "quota", "client relationship", "closing deals",
	}},
	{name: "Customer Support", keywords: []string{
		"customer support", "customer service", "technical support", "help desk", "client success",
		"service desk", "ticketing system", "zendesk", "customer satisfaction", "issue resolution",
	}},
	{name: "Design", keywords: []string{
		"designer", "graphic design", "ui", "ux", "user interface", "user experience", "visual design",
		"figma", "sketch", "adobe", "photoshop", "illustrator", "indesign", "typography", "web design",
	}},
	{name: "Human Resources", keywords: []string{
		"hr", "human resources", "recruitment", "talent acquisition", "onboarding", "employee relations",
		"training", "development", "compensation", "benefits", "hr policy", "performance management",
	}},
	{name: "Finance", keywords: []string{
		"finance", "accounting", "financial analysis", "budget", "forecast", "audit", "tax", "cpa", "cfa",
		"bookkeeping", "accounts payable", "accounts receivable", "financial statement", "balance sheet",
	}},
})

func compileCategories(in []category) []category {
	for i := range in {
		in[i].patterns = make([]*regexp.Regexp, 0, len(in[i].keywords))
		for _, kw := range in[i].keywords {
			in[i].patterns = append(in[i].patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return in
}

// Categories lists the known category names in tie-break order.
func Categories() []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.name)
	}
	return names
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[ \t]*(?i:professional[ \t]+)?(?i:experience|title|position)[: \t]+([A-Za-z ,\-&]+?)[ \t]*$`),
	regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Za-z \-]+?)[ \t]*$`),
}

// Category picks the job category with the most keyword hits. With a weak
// signal, short title-like lines add two points per keyword they contain.
func Category(doc *Document) string {
	scores := make([]int, len(categories))
	for i, c := range categories {
		for _, p := range c.patterns {
			scores[i] += len(p.FindAllStringIndex(doc.Normalized, -1))
		}
	}

	best, bestScore := pickCategory(scores, -1, 0)
	if bestScore >= strongSignal {
		return categories[best].name
	}

	for _, title := range jobTitles(doc) {
		for i, c := range categories {
			for _, kw := range c.keywords {
				if strings.Contains(title, kw) {
					scores[i] += 2
				}
			}
		}
	}

	best, _ = pickCategory(scores, best, bestScore)
	if best < 0 {
		return resume.DefaultCategory
	}
	return categories[best].name
}

// pickCategory returns the first index whose score strictly exceeds the
// running maximum, starting from the given best.
func pickCategory(scores []int, best, bestScore int) (int, int) {
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

func jobTitles(doc *Document) []string {
	var titles []string
	for _, p := range titlePatterns {
		for _, m := range p.FindAllStringSubmatch(doc.Original, -1) {
			title := strings.TrimSpace(m[1])
			if len(title) > 3 && len(title) < 40 {
				titles = append(titles, strings.ToLower(title))
			}
		}
	}
	return titles
}
