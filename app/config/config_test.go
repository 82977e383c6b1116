package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  env: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, "recipe_parser", cfg.Mongo.Database)
	assert.Equal(t, "ingredient_foods", cfg.Meili.FoodIndex)
	assert.Equal(t, "brute", cfg.Parser.Default)
	assert.Equal(t, models.PluralAlways, cfg.Parser.DefaultPluralPolicy())
	assert.InDelta(t, 0.85, cfg.Parser.Matcher.FoodSimilarityThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Parser.Matcher.MinContainmentLength)
	assert.False(t, cfg.OpenAI.Enabled)
	assert.Equal(t, 60*time.Second, cfg.OpenAI.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
parser:
  plural_policy: without-unit
  matcher:
    food_similarity_threshold: 0.9
openai:
  enabled: true
  workers: 3
  headers:
    X-Org: recipes
`)
	t.Setenv("OPENAI_API_KEY", "sk-test-1234567890")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, models.PluralWithoutUnit, cfg.Parser.DefaultPluralPolicy())
	assert.InDelta(t, 0.9, cfg.Parser.Matcher.FoodSimilarityThreshold, 1e-9)
	assert.Equal(t, "sk-test-1234567890", cfg.OpenAI.APIKey)
	assert.Equal(t, "recipes", cfg.OpenAI.Headers["x-org"])

	llm := cfg.OpenAI.LLMConfig()
	assert.True(t, llm.Enabled)
	assert.Equal(t, 3, llm.Workers)
	assert.True(t, llm.SendDatabaseData)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			App:    AppConfig{Port: "8080"},
			Parser: ParserConfig{Default: "brute", PluralPolicy: "always", VocabularyCacheSize: 1},
		}
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "no port", mutate: func(c *Config) { c.App.Port = "" }},
		{name: "unknown parser", mutate: func(c *Config) { c.Parser.Default = "regex" }},
		{name: "unknown plural policy", mutate: func(c *Config) { c.Parser.PluralPolicy = "sometimes" }},
		{name: "cache size", mutate: func(c *Config) { c.Parser.VocabularyCacheSize = 0 }},
		{name: "openai without key", mutate: func(c *Config) { c.OpenAI = OpenAIConfig{Enabled: true, Workers: 1} }},
		{name: "openai without workers", mutate: func(c *Config) { c.OpenAI = OpenAIConfig{Enabled: true, APIKey: "k"} }},
		{name: "openai ok", mutate: func(c *Config) { c.OpenAI = OpenAIConfig{Enabled: true, APIKey: "k", Workers: 2} }, ok: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey(""))
	assert.Equal(t, "****", MaskAPIKey("12345678"))
	assert.Equal(t, "sk-t...7890", MaskAPIKey("sk-test-1234567890"))
}
