package gemini

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

type prober interface {
	Probe(ctx context.Context) error
}

// Analyzer runs resume analysis and relevance scoring on Gemini. Gemini has
// no separate system role in this call, so both prompt parts go in one text.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewAnalyzer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		generator: generator,
		logger:    withProvider(logger, generator),
		maxLogLen: maxLogLength,
	}
}

func withProvider(log *zap.Logger, generator contentGenerator) *zap.Logger {
	return logger.WithProvider(log, ProviderName, generator.Model())
}

func (a *Analyzer) Provider() string {
	return ProviderName
}

func (a *Analyzer) Model() string {
	return a.generator.Model()
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (*resume.Record, error) {
	raw, err := a.generate(ctx, ai.AnalysisPrompt(text, ai.AnalysisTextLimit).Combined())
	if err != nil {
		return nil, err
	}
	return ai.ParseAnalysis(raw)
}

func (a *Analyzer) Score(ctx context.Context, query, resumeText string) (resume.ScoreResult, error) {
	raw, err := a.generate(ctx, ai.ScorePrompt(query, resumeText).Combined())
	if err != nil {
		return resume.ScoreResult{}, err
	}
	return ai.ParseScore(raw)
}

// Probe delegates to the generator when it can look models up.
func (a *Analyzer) Probe(ctx context.Context) error {
	if p, ok := a.generator.(prober); ok {
		return p.Probe(ctx)
	}
	return nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw, nil
}
