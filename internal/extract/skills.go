package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/resumatch/internal/resume"
)

// vocabulary holds known skill terms in lower case. Terms shorter than three
// characters are left out because the skill length filter would drop them.
var vocabulary = []string{
	// languages
	"python", "java", "javascript", "typescript", "c++", "ruby", "php", "swift", "kotlin", "rust",
	"scala", "perl", "matlab", "bash", "shell", "sql", "html", "css", "sass", "less",
	// frameworks and libraries
	"react", "angular", "vue", "django", "flask", "spring", "asp.net", "node.js", "express.js",
	"jquery", "bootstrap", "tailwind", "laravel", "symfony", "rails", "pytorch", "tensorflow",
	"keras", "scikit-learn", "pandas", "numpy", "matplotlib", "seaborn",
	// cloud and devops
	"aws", "azure", "gcp", "google cloud", "docker", "kubernetes", "terraform", "jenkins", "github actions",
	"circleci", "travis", "ansible", "chef", "puppet", "serverless", "lambda", "ec2", "rds",
	// databases
	"mysql", "postgresql", "mongodb", "sqlite", "oracle", "sql server", "dynamodb", "cassandra", "redis",
	"elasticsearch", "firebase", "neo4j",
	// tools and methodologies
	"git", "github", "gitlab", "bitbucket", "jira", "confluence", "agile", "scrum", "kanban", "tdd", "ci/cd",
	"rest", "graphql", "soap", "microservices", "mvc", "oop", "functional programming",
	// data science
	"machine learning", "deep learning", "artificial intelligence", "nlp", "computer vision", "data mining",
	"data analysis", "data visualization", "statistical analysis", "a/b testing", "big data", "hadoop", "spark",
	// design
	"figma", "sketch", "adobe xd", "photoshop", "illustrator", "ui design", "ux design", "wireframing",
	"prototyping", "responsive design", "accessibility", "user research",
	// soft skills
	"leadership", "communication", "teamwork", "problem solving", "critical thinking", "time management",
	"project management", "customer service", "presentation", "negotiation", "conflict resolution",
}

type vocabTerm struct {
	term    string
	pattern *regexp.Regexp
}

var vocabPatterns = compileVocabulary(vocabulary)

// compileVocabulary builds one matcher per term. Terms such as "c++" end in
// non-word characters, so boundaries are expressed as "not a word character"
// instead of \b.
func compileVocabulary(terms []string) []vocabTerm {
	out := make([]vocabTerm, 0, len(terms))
	for _, term := range terms {
		out = append(out, vocabTerm{
			term:    term,
			pattern: regexp.MustCompile(`(?i)(?:^|[^\w])(` + regexp.QuoteMeta(term) + `)(?:[^\w]|$)`),
		})
	}
	return out
}

const sectionEnd = `(?:\n[ \t]*\n|\n[A-Za-z]|\z)`

var skillSectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:technical|core|key|professional)\s+skills?[\s:]+(.+?)` + sectionEnd),
	regexp.MustCompile(`(?is)skills(?:\s+&|\s+and)?\s+(?:expertise|proficiencies)[\s:]+(.+?)` + sectionEnd),
	regexp.MustCompile(`(?is)(?:technical|professional|areas\s+of)\s+expertise[\s:]+(.+?)` + sectionEnd),
	regexp.MustCompile(`(?is)core\s+competenc(?:y|ies)[\s:]+(.+?)` + sectionEnd),
	regexp.MustCompile(`(?ims)^[ \t]*skills[ \t]*:[ \t]*(.+?)` + sectionEnd),
}

var (
	sectionItemSplit = regexp.MustCompile(`[,•|;\n]|\s+and\s+`)
	certPattern      = regexp.MustCompile(`(?i)\b(?:certified|certification|certificate)[ \t]+(?:in|as|on)[ \t]+([A-Za-z0-9][A-Za-z0-9 \-]*)`)
	capitalizedWord  = regexp.MustCompile(`\b[A-Z][a-zA-Z]+\b`)
)

var capitalizedStopWords = map[string]struct{}{
	"The": {}, "And": {}, "For": {}, "With": {}, "From": {}, "Our": {},
	"Inc": {}, "Ltd": {}, "LLC": {}, "Page": {},
}

var lowerTitleWords = map[string]struct{}{
	"and": {}, "of": {}, "the": {}, "for": {}, "with": {},
}

// Skills collects skills from the known vocabulary, labeled skill sections
// and certification phrases. When nothing survives the length filter the
// capitalized words of the original text are used instead.
func Skills(doc *Document) []string {
	found := make([]string, 0, resume.MaxSkills)

	found = append(found, vocabularySkills(doc)...)
	found = append(found, sectionSkills(doc)...)
	found = append(found, certificationSkills(doc)...)

	skills := resume.NormalizeSkills(found)
	if len(skills) > 0 {
		return skills
	}

	return resume.NormalizeSkills(capitalizedWords(doc))
}

func vocabularySkills(doc *Document) []string {
	var out []string
	for _, v := range vocabPatterns {
		if !v.pattern.MatchString(doc.Normalized) {
			continue
		}
		if m := v.pattern.FindStringSubmatch(doc.Original); m != nil {
			out = append(out, m[1])
			continue
		}
		out = append(out, titleCase(v.term))
	}
	return out
}

func sectionSkills(doc *Document) []string {
	var out []string
	for _, p := range skillSectionPatterns {
		m := p.FindStringSubmatch(doc.Original)
		if m == nil {
			continue
		}
		for _, item := range sectionItemSplit.Split(m[1], -1) {
			item = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(item), "-*•"))
			if resume.ValidSkill(item) {
				out = append(out, item)
			}
		}
	}
	return out
}

func certificationSkills(doc *Document) []string {
	var out []string
	for _, m := range certPattern.FindAllStringSubmatch(doc.Original, -1) {
		cert := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(cert) > 2 {
			out = append(out, cert+" Certification")
		}
	}
	return out
}

func capitalizedWords(doc *Document) []string {
	var out []string
	for _, word := range capitalizedWord.FindAllString(doc.Original, -1) {
		if _, stop := capitalizedStopWords[word]; stop {
			continue
		}
		out = append(out, word)
	}
	return out
}

func titleCase(term string) string {
	words := strings.Fields(term)
	for i, w := range words {
		if _, ok := lowerTitleWords[w]; ok {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
