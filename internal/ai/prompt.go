package ai

import (
	_ "embed"
	"strings"

	"github.com/spigell/resumatch/internal/utils"
)

var (
	//go:embed prompts/analyze_system.md
	analyzeSystemPrompt string
	//go:embed prompts/analyze_user.md
	analyzeUserTemplate string
	//go:embed prompts/score_system.md
	scoreSystemPrompt string
	//go:embed prompts/score_user.md
	scoreUserTemplate string
)

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

// AnalysisPrompt builds the extraction prompt for resume text, keeping at
// most limit runes of the resume.
func AnalysisPrompt(text string, limit int) Prompt {
	text, _ = utils.TruncateRunes(text, limit)
	return Prompt{
		System: strings.TrimSpace(analyzeSystemPrompt),
		User:   strings.ReplaceAll(strings.TrimSpace(analyzeUserTemplate), "{{RESUME_TEXT}}", text),
	}
}

// ScorePrompt builds the relevance prompt for a job query and resume text.
func ScorePrompt(query, resumeText string) Prompt {
	resumeText, _ = utils.TruncateRunes(resumeText, ScoreTextLimit)
	user := strings.ReplaceAll(strings.TrimSpace(scoreUserTemplate), "{{JOB_QUERY}}", query)
	return Prompt{
		System: strings.TrimSpace(scoreSystemPrompt),
		User:   strings.ReplaceAll(user, "{{RESUME_TEXT}}", resumeText),
	}
}

// Combined joins the two messages for providers without a system role.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}
