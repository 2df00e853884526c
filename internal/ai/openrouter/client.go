// Package openrouter talks to OpenRouter and any other server exposing the
// OpenAI chat completions, embeddings and models endpoints.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/utils"
)

const (
	ProviderName = "openrouter"

	DefaultBaseURL        = "https://openrouter.ai/api/v1"
	DefaultModel          = "mistralai/mistral-7b-instruct:free"
	DefaultEmbeddingModel = "openai/text-embedding-3-small"

	defaultMaxLogLength = 200
	temperature         = 0.1
	maxTokens           = 500
)

// Config describes one OpenAI-compatible endpoint.
type Config struct {
	// Provider names the endpoint in logs and errors. Defaults to "openrouter".
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	// Referer and Title are sent as the attribution headers OpenRouter asks for.
	Referer      string
	Title        string
	MaxLogLength int
	// KeyOptional allows endpoints that do not check credentials, like a local
	// llama.cpp server.
	KeyOptional bool
}

// Client implements ai.Analyzer, ai.Scorer, ai.Embedder and ai.Prober.
type Client struct {
	api            openai.Client
	provider       string
	model          string
	embeddingModel string
	maxLogLen      int
	logger         *zap.Logger
}

// New validates the config and builds a client. Requests are never retried.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" {
		provider = ProviderName
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		if !cfg.KeyOptional {
			return nil, fmt.Errorf("%s api key is required: %w", provider, ai.ErrNotConfigured)
		}
		apiKey = "none"
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	embeddingModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	return &Client{
		api:            openai.NewClient(opts...),
		provider:       provider,
		model:          model,
		embeddingModel: embeddingModel,
		maxLogLen:      maxLogLen,
		logger:         logger.WithProvider(log, provider, model),
	}, nil
}

func (c *Client) Provider() string {
	return c.provider
}

func (c *Client) Model() string {
	return c.model
}

// Analyze asks the model for the five record fields and parses its answer.
func (c *Client) Analyze(ctx context.Context, text string) (*resume.Record, error) {
	raw, err := c.Complete(ctx, ai.AnalysisPrompt(text, ai.AnalysisTextLimit))
	if err != nil {
		return nil, err
	}
	return ai.ParseAnalysis(raw)
}

// Score asks the model how well resumeText fits the job query.
func (c *Client) Score(ctx context.Context, query, resumeText string) (resume.ScoreResult, error) {
	raw, err := c.Complete(ctx, ai.ScorePrompt(query, resumeText))
	if err != nil {
		return resume.ScoreResult{}, err
	}
	return ai.ParseScore(raw)
}

// Complete sends a system/user pair and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt ai.Prompt) (string, error) {
	c.logger.Debug("chat completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt.User)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt.User, c.maxLogLen)),
	)

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", c.classify("chat completion", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", c.provider, ai.ErrEmptyResponse)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	c.logger.Debug("chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(content)),
		zap.String("response_preview", utils.TruncateForLog(content, c.maxLogLen)),
	)
	if content == "" {
		return "", fmt.Errorf("%s: %w", c.provider, ai.ErrEmptyResponse)
	}

	return content, nil
}

// Embed returns the embedding of the first ai.EmbedTextLimit runes of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	text, _ = utils.TruncateRunes(strings.TrimSpace(text), ai.EmbedTextLimit)
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, c.classify("embedding", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%s: no embedding data returned: %w", c.provider, ai.ErrEmptyResponse)
	}

	return resp.Data[0].Embedding, nil
}

// Probe checks that the endpoint answers and lists the chat model.
func (c *Client) Probe(ctx context.Context) error {
	ids, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(ids, c.model) {
		return fmt.Errorf("%s does not list model %q: %w", c.provider, c.model, ai.ErrUnavailable)
	}
	return nil
}

// ListModels returns the model ids the endpoint serves. Local servers such
// as llama.cpp answer this even when they cannot look a single model up.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.api.Models.List(ctx)
	if err != nil {
		return nil, c.classify("list models", err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *Client) classify(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := strings.TrimSpace(apiErr.Message)
		if detail == "" {
			detail = op + " failed"
		}
		return ai.StatusError(c.provider, apiErr.StatusCode, detail)
	}
	return fmt.Errorf("%s %s: %w", c.provider, op, err)
}
