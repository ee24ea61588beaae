package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("DOCUMENTS_PATH", "corpus.yaml")
	t.Setenv("PORT", "9090")
	t.Setenv("EMBEDDING_PROVIDER", "hash")
	t.Setenv("HASH_DIMENSIONS", "32")
	t.Setenv("EMBED_TIMEOUT", "5s")
	t.Setenv("TRACING", "true")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "corpus.yaml", cfg.DocumentsPath)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ProviderHash, cfg.EmbeddingProvider)
	assert.Equal(t, 32, cfg.HashDimensions)
	assert.Equal(t, 5*time.Second, cfg.EmbedTimeout)
	assert.Equal(t, DefaultCompletionTimeout, cfg.CompletionTimeout)
	assert.True(t, cfg.Tracing)
	assert.False(t, cfg.SynthesisEnabled())
	assert.Equal(t, ":9090", cfg.Addr())
}

func TestFromEnv_BadValues(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "hash")

	t.Run("port", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Setenv("COMPLETION_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestFromEnv_DefaultProvider(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "")

	t.Run("no key uses hash", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderHash, cfg.EmbeddingProvider)
		assert.False(t, cfg.SynthesisEnabled())
	})

	t.Run("key uses openai", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, cfg.EmbeddingProvider)
	})

	t.Run("explicit openai still needs a key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("EMBEDDING_PROVIDER", "openai")
		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.OpenAIAPIKey = "sk-test"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "openai without key", mutate: func(c *Config) { c.OpenAIAPIKey = "" }},
		{name: "unknown provider", mutate: func(c *Config) { c.EmbeddingProvider = "bert" }},
		{name: "hash without dimensions", mutate: func(c *Config) { c.EmbeddingProvider = ProviderHash; c.HashDimensions = 0 }},
		{name: "no documents", mutate: func(c *Config) { c.DocumentsPath = "" }},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }},
		{name: "zero embed timeout", mutate: func(c *Config) { c.EmbedTimeout = 0 }},
		{name: "negative completion timeout", mutate: func(c *Config) { c.CompletionTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestFromContext(t *testing.T) {
	var cfg Config
	app := &cli.App{
		Flags: Flags(),
		Action: func(ctx *cli.Context) error {
			var err error
			cfg, err = FromContext(ctx)
			return err
		},
	}

	err := app.Run([]string{"doc-search", "--embedding-provider", "hash", "--port", "8123", "--documents", "docs/*.md", "--log-format", "json"})
	require.NoError(t, err)
	assert.Equal(t, ProviderHash, cfg.EmbeddingProvider)
	assert.Equal(t, 8123, cfg.Port)
	assert.Equal(t, "docs/*.md", cfg.DocumentsPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DefaultEmbedTimeout, cfg.EmbedTimeout)
}

func TestFromContext_DefaultProvider(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")

	run := func(args ...string) (Config, error) {
		var cfg Config
		app := &cli.App{
			Flags: Flags(),
			Action: func(ctx *cli.Context) error {
				var err error
				cfg, err = FromContext(ctx)
				return err
			},
		}
		err := app.Run(append([]string{"doc-search"}, args...))
		return cfg, err
	}

	cfg, err := run()
	require.NoError(t, err)
	assert.Equal(t, ProviderHash, cfg.EmbeddingProvider)

	cfg, err = run("--openai-api-key", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.EmbeddingProvider)
	assert.True(t, cfg.SynthesisEnabled())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOC_SEARCH_DOTENV_PROBE=loaded\n"), 0644))
	t.Setenv("DOC_SEARCH_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("DOC_SEARCH_DOTENV_PROBE"))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	LoadDotEnv(logger, path)
	assert.Equal(t, "loaded", os.Getenv("DOC_SEARCH_DOTENV_PROBE"))

	LoadDotEnv(logger, filepath.Join(t.TempDir(), "missing.env"))
	assert.Empty(t, logs.String(), "a missing .env file is not worth a warning")
}
