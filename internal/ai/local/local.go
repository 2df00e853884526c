// Package local runs resume analysis on a model served from this machine,
// either through a llama.cpp server or an offline OpenAI-compatible server.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/ai/openrouter"
	"github.com/spigell/resumatch/internal/resume"
)

const (
	DefaultLlamaCppURL = "http://127.0.0.1:8080/v1"
	DefaultOfflineURL  = "http://127.0.0.1:8000/v1"
)

// Config describes one local model.
type Config struct {
	// Name is the strategy name reported in logs and analysis sources.
	Name string
	// ModelPath is the model file the server was started with. When set, it
	// must exist before the server is probed.
	ModelPath    string
	BaseURL      string
	Model        string
	MaxLogLength int
}

// Provider analyses resumes with a local model. Output of small local models
// is often broken JSON, so responses are salvaged field by field.
type Provider struct {
	name      string
	modelPath string
	client    *openrouter.Client
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, errors.New("local provider name is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%s base url is required: %w", name, ai.ErrNotConfigured)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" && cfg.ModelPath != "" {
		model = baseName(cfg.ModelPath)
	}
	if model == "" {
		model = name
	}

	client, err := openrouter.New(openrouter.Config{
		Provider:     name,
		BaseURL:      cfg.BaseURL,
		Model:        model,
		MaxLogLength: cfg.MaxLogLength,
		KeyOptional:  true,
	}, logger)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		name:      name,
		modelPath: strings.TrimSpace(cfg.ModelPath),
		client:    client,
		logger:    logger,
	}, nil
}

func (p *Provider) Provider() string {
	return p.name
}

func (p *Provider) Model() string {
	return p.client.Model()
}

// Load checks that the model file exists and that the server answers.
func (p *Provider) Load(ctx context.Context) error {
	if p.modelPath != "" {
		info, err := os.Stat(p.modelPath)
		if err != nil {
			return fmt.Errorf("%s model file %q: %w: %v", p.name, p.modelPath, ai.ErrUnavailable, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s model path %q is a directory: %w", p.name, p.modelPath, ai.ErrUnavailable)
		}
	}

	models, err := p.client.ListModels(ctx)
	if err != nil {
		return err
	}

	p.logger.Info("local model loaded",
		zap.String("provider", p.name),
		zap.String("model_path", p.modelPath),
		zap.Strings("served_models", models),
	)
	return nil
}

// Analyze sends at most ai.LocalTextLimit runes of text to the model.
func (p *Provider) Analyze(ctx context.Context, text string) (*resume.Record, error) {
	raw, err := p.client.Complete(ctx, ai.AnalysisPrompt(text, ai.LocalTextLimit))
	if err != nil {
		return nil, err
	}
	return ai.SalvageAnalysis(raw)
}

func baseName(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}
