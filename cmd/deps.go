package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/ai/gemini"
	"github.com/spigell/resumatch/internal/ai/local"
	"github.com/spigell/resumatch/internal/ai/openrouter"
	"github.com/spigell/resumatch/internal/extract"
	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/search"
	"github.com/spigell/resumatch/internal/secrets"
	"github.com/spigell/resumatch/internal/store"
	"github.com/spigell/resumatch/internal/strategy"
)

const (
	openRouterKeyEnv = "OPENROUTER_API_KEY"
	geminiKeyEnv     = "GEMINI_API_KEY"
)

// deps carries everything a command needs.
type deps struct {
	config   *Config
	logger   *zap.Logger
	analyzer *strategy.Orchestrator
	scorer   ai.Scorer
	embedder ai.Embedder
	store    *store.Store
}

// setup builds the logger, config and analysis strategies. It exits the
// process on failure, the same way every command reports fatal errors.
func setup(ctx context.Context) *deps {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	d := &deps{config: config, logger: logger}
	d.analyzer = d.buildOrchestrator(ctx)

	return d
}

func (d *deps) buildOrchestrator(ctx context.Context) *strategy.Orchestrator {
	mode := strategy.Mode(d.config.Mode)
	strategies := []strategy.Strategy{strategy.NewRules(extract.New())}

	if mode == strategy.ModeAuto || mode == strategy.ModeAPI {
		remote, err := newRemoteAnalyzer(ctx, d.config.API, d.logger)
		if err != nil {
			d.logger.Info("remote analysis is disabled",
				zap.String(logger.FieldProvider, d.config.API.Provider),
				zap.Error(err),
				zap.String("hint", "set "+openRouterKeyEnv+" or "+geminiKeyEnv+" environment variable, or the api-key-file key in the configuration file"),
			)
		} else {
			strategies = append(strategies, strategy.NewRemote(strategy.API, remote, d.config.Timeout))
			if scorer, ok := remote.(ai.Scorer); ok {
				d.scorer = scorer
			}
			if embedder, ok := remote.(ai.Embedder); ok {
				d.embedder = embedder
			}
		}
	}

	locals := []struct {
		name string
		cfg  *LocalModelConfig
	}{
		{strategy.LlamaCpp, d.config.Local.LlamaCpp},
		{strategy.Offline, d.config.Local.Offline},
	}
	for _, l := range locals {
		name, cfg := l.name, l.cfg
		if !cfg.Enabled && string(mode) != name {
			continue
		}
		model, err := local.New(local.Config{
			Name:         name,
			ModelPath:    cfg.ModelPath,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			MaxLogLength: cfg.MaxLogLength,
		}, d.logger)
		if err != nil {
			d.logger.Warn("local model is disabled", zap.String(logger.FieldStrategy, name), zap.Error(err))
			continue
		}
		strategies = append(strategies, strategy.NewLocal(name, model, d.config.Timeout))
	}

	// Embeddings come from OpenRouter even when Gemini analyses resumes.
	if d.embedder == nil {
		if client, err := newOpenRouter(d.config.API.OpenRouter, d.logger); err == nil {
			d.embedder = client
		}
	}

	return strategy.New(mode, d.logger, strategies...)
}

func newRemoteAnalyzer(ctx context.Context, cfg *APIConfig, logger *zap.Logger) (ai.Analyzer, error) {
	switch provider := strings.TrimSpace(strings.ToLower(cfg.Provider)); provider {
	case "", openrouter.ProviderName:
		return newOpenRouter(cfg.OpenRouter, logger)
	case gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			Env:   geminiKeyEnv,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, err
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}

		return gemini.NewAnalyzer(generator, logger, cfg.Gemini.MaxLogLength), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newOpenRouter(cfg *OpenRouterConfig, logger *zap.Logger) (*openrouter.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "openrouter api key",
		Value: cfg.APIKey,
		Env:   openRouterKeyEnv,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return openrouter.New(openrouter.Config{
		APIKey:         apiKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		MaxLogLength:   cfg.MaxLogLength,
	}, logger)
}

// openStore opens the resume pool. The caller closes it.
func (d *deps) openStore() *store.Store {
	if d.store != nil {
		return d.store
	}

	s, err := store.Open(d.config.Store.Path)
	if err != nil {
		d.logger.Fatal("opening the resume store", zap.String("path", d.config.Store.Path), zap.Error(err))
	}
	d.store = s

	return s
}

func (d *deps) searchService() *search.Service {
	opts := []search.Option{
		search.WithParallelism(d.config.Search.Parallelism),
		search.WithTimeout(d.config.Timeout),
	}
	if d.scorer != nil {
		opts = append(opts, search.WithScorer(d.scorer))
	}
	if d.embedder != nil {
		opts = append(opts, search.WithEmbedder(d.embedder))
	}

	return search.New(d.openStore(), d.logger, opts...)
}

func (d *deps) indexer() *search.Indexer {
	return search.NewIndexer(d.analyzer, d.openStore(), d.embedder, d.logger, search.WithEmbedTimeout(d.config.Timeout))
}

func (d *deps) close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("closing the resume store", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
