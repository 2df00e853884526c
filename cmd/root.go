package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resumatch/internal/ai/local"
	"github.com/spigell/resumatch/internal/search"
	"github.com/spigell/resumatch/internal/strategy"
)

const (
	app = "resumatch"
)

type Config struct {
	Mode    string        `mapstructure:"mode" validate:"oneof=auto api offline regex llama_cpp"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	API     *APIConfig    `mapstructure:"api" validate:"required"`
	Local   *LocalConfig  `mapstructure:"local" validate:"required"`
	Store   *StoreConfig  `mapstructure:"store" validate:"required"`
	Search  *SearchConfig `mapstructure:"search" validate:"required"`
}

type APIConfig struct {
	Provider   string            `mapstructure:"provider" validate:"oneof=openrouter gemini"`
	OpenRouter *OpenRouterConfig `mapstructure:"openrouter" validate:"required"`
	Gemini     *GeminiConfig     `mapstructure:"gemini" validate:"required"`
}

type OpenRouterConfig struct {
	APIKey         string `mapstructure:"api-key" json:"-"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base-url" validate:"omitempty,url"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	Referer        string `mapstructure:"referer"`
	Title          string `mapstructure:"title"`
	MaxLogLength   int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type LocalConfig struct {
	LlamaCpp *LocalModelConfig `mapstructure:"llama-cpp" validate:"required"`
	Offline  *LocalModelConfig `mapstructure:"offline" validate:"required"`
}

type LocalModelConfig struct {
	// Enabled adds the model to the auto plan. A mode pinned to it uses it regardless.
	Enabled      bool   `mapstructure:"enabled"`
	ModelPath    string `mapstructure:"model-path"`
	BaseURL      string `mapstructure:"base-url" validate:"omitempty,url"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SearchConfig struct {
	Limit       int `mapstructure:"limit" validate:"gte=0"`
	Parallelism int `mapstructure:"parallelism" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resumatch extracts candidate profiles from resumes and ranks them against job queries",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	bindEnv("mode", "ANALYZER_MODE")
	bindEnv("store.path", "RESUMATCH_STORE")

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resumatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("mode", "m", "", "analyzer mode: auto, api, offline, regex or llama_cpp")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(strategy.ModeAuto))
	v.SetDefault("timeout", strategy.DefaultTimeout)
	v.SetDefault("api.provider", "openrouter")
	v.SetDefault("api.openrouter.title", "ResuMatch")
	v.SetDefault("api.gemini.model", "")
	v.SetDefault("local.llama-cpp.base-url", local.DefaultLlamaCppURL)
	v.SetDefault("local.offline.base-url", local.DefaultOfflineURL)
	v.SetDefault("store.path", app+".db")
	v.SetDefault("search.limit", 0)
	v.SetDefault("search.parallelism", search.DefaultParallelism)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	mode, err := strategy.ParseMode(config.Mode)
	if err != nil {
		return nil, err
	}
	config.Mode = string(mode)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
