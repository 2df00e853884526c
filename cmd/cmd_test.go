package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resumatch/internal/ai/local"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/search"
	"github.com/spigell/resumatch/internal/strategy"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := decodeConfig(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, string(strategy.ModeAuto), config.Mode)
	assert.Equal(t, strategy.DefaultTimeout, config.Timeout)
	assert.Equal(t, "openrouter", config.API.Provider)
	assert.Equal(t, local.DefaultLlamaCppURL, config.Local.LlamaCpp.BaseURL)
	assert.Equal(t, local.DefaultOfflineURL, config.Local.Offline.BaseURL)
	assert.False(t, config.Local.LlamaCpp.Enabled)
	assert.Equal(t, "resumatch.db", config.Store.Path)
	assert.Equal(t, search.DefaultParallelism, config.Search.Parallelism)
}

func TestDecodeConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: LLAMA_CPP
timeout: 5s
api:
  provider: gemini
  gemini:
    model: gemini-2.0-flash
local:
  llama-cpp:
    enabled: true
    model-path: /models/mistral.gguf
store:
  path: /tmp/pool.db
search:
  limit: 7
`), 0o600))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, string(strategy.ModeLlamaCpp), config.Mode)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, "gemini", config.API.Provider)
	assert.Equal(t, "gemini-2.0-flash", config.API.Gemini.Model)
	assert.True(t, config.Local.LlamaCpp.Enabled)
	assert.Equal(t, "/models/mistral.gguf", config.Local.LlamaCpp.ModelPath)
	assert.Equal(t, local.DefaultLlamaCppURL, config.Local.LlamaCpp.BaseURL)
	assert.Equal(t, "/tmp/pool.db", config.Store.Path)
	assert.Equal(t, 7, config.Search.Limit)
}

func TestDecodeConfigRejects(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"mode":        func(v *viper.Viper) { v.Set("mode", "cloud") },
		"provider":    func(v *viper.Viper) { v.Set("api.provider", "anthropic") },
		"base url":    func(v *viper.Viper) { v.Set("local.offline.base-url", "not a url") },
		"store path":  func(v *viper.Viper) { v.Set("store.path", "") },
		"parallelism": func(v *viper.Viper) { v.Set("search.parallelism", -1) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := newViper(t)
			mutate(v)
			_, err := decodeConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestCollectResumes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.PDF", "notes.docx", "nested/c.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
	explicit := filepath.Join(dir, "notes.docx")

	files, err := collectResumes([]string{dir, explicit})
	require.NoError(t, err)
	sort.Strings(files)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.PDF"),
		filepath.Join(dir, "nested", "c.txt"),
		explicit,
	}, files)

	_, err = collectResumes([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func newSearchCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	addSearchFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestSearchRequest(t *testing.T) {
	cmd := newSearchCommand(t, "--type", "LLM", "--min-experience", "3", "--education", "Master of Science",
		"--category", " data SCIENCE ", "--skill", "python", "--skill", "sql")

	req, err := searchRequest(cmd, "senior data scientist", 20)
	require.NoError(t, err)

	assert.Equal(t, search.TypeLLM, req.Type)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, 3, req.Filter.MinExperience)
	assert.Equal(t, resume.Masters, req.Filter.EducationLevel)
	assert.Equal(t, "Data Science", req.Filter.Category)
	assert.Equal(t, []string{"python", "sql"}, req.Filter.Skills)

	req, err = searchRequest(newSearchCommand(t, "--limit", "2"), "q", 20)
	require.NoError(t, err)
	assert.Equal(t, search.TypeKeyword, req.Type)
	assert.Equal(t, 2, req.Limit)
	assert.Empty(t, req.Filter.EducationLevel)

	_, err = searchRequest(newSearchCommand(t, "--type", "fuzzy"), "q", 0)
	assert.Error(t, err)

	_, err = searchRequest(newSearchCommand(t, "--limit", "-1"), "q", 0)
	assert.Error(t, err)
}

func TestCanonicalCategory(t *testing.T) {
	assert.Equal(t, "Software Engineering", canonicalCategory("software engineering"))
	assert.Equal(t, "Professional", canonicalCategory(" PROFESSIONAL "))
	assert.Equal(t, "Quantum Basket Weaving", canonicalCategory("Quantum Basket Weaving"))
	assert.Empty(t, canonicalCategory(""))
}
