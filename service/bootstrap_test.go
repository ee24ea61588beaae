package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-search/config"
	"doc-search/embedding"
	"doc-search/manifest"
	"doc-search/search"
)

func writeCapitals(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": 1, "text": "Paris is the capital of France"},
		{"id": 2, "text": "Tokyo is the capital of Japan"}
	]`), 0644))
	return path
}

func hashConfig(documentsPath string) config.Config {
	cfg := config.Default()
	cfg.DocumentsPath = documentsPath
	cfg.EmbeddingProvider = config.ProviderHash
	return cfg
}

func TestBootstrap_Hash(t *testing.T) {
	engine, err := Bootstrap(context.Background(), hashConfig(writeCapitals(t)), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, engine.Store().Len())
	assert.Equal(t, embedding.DefaultHashDimensions, engine.Store().Dimensions())
	assert.False(t, engine.SynthesisEnabled())

	// Querying with a document's own text finds that document
	for _, doc := range engine.Store().Documents() {
		response, err := engine.BasicSearch(context.Background(), doc.Text)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, response.DocumentID)
		assert.InDelta(t, 1.0, response.Score, 1e-6)
	}
}

func TestBootstrap_StartupErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		_, err := Bootstrap(context.Background(), hashConfig(filepath.Join(t.TempDir(), "nope.json")), discardLogger())
		assert.ErrorIs(t, err, search.ErrStartup)
		assert.ErrorIs(t, err, manifest.ErrMissing)
		assert.Equal(t, KindStartup, KindOf(err))
	})

	t.Run("empty source", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "documents.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

		_, err := Bootstrap(context.Background(), hashConfig(path), discardLogger())
		assert.ErrorIs(t, err, search.ErrStartup)
		assert.ErrorIs(t, err, manifest.ErrNoDocuments)
	})

	t.Run("openai without key", func(t *testing.T) {
		cfg := hashConfig(writeCapitals(t))
		cfg.EmbeddingProvider = config.ProviderOpenAI
		_, err := Bootstrap(context.Background(), cfg, discardLogger())
		assert.ErrorIs(t, err, search.ErrStartup)
	})
}

func TestBootstrap_OpenAI(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/embeddings":
			// Two documents at startup, one vector per query afterwards
			_, _ = w.Write([]byte(`{"object": "list", "data": [
				{"object": "embedding", "index": 0, "embedding": [1, 0]},
				{"object": "embedding", "index": 1, "embedding": [0, 1]}
			]}`))
		case "/v1/chat/completions":
			_, _ = w.Write([]byte(`{"object": "chat.completion", "choices": [
				{"index": 0, "message": {"role": "assistant", "content": "Paris."}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(api.Close)

	cfg := hashConfig(writeCapitals(t))
	cfg.EmbeddingProvider = config.ProviderOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIBaseURL = api.URL + "/v1"

	engine, err := Bootstrap(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.True(t, engine.SynthesisEnabled())
	assert.Equal(t, embedding.DefaultOpenAIModel, engine.Store().Model())

	// The fake returns two vectors for a single query, which the embedder rejects
	_, err = engine.BasicSearch(context.Background(), "capital of France")
	assert.ErrorIs(t, err, search.ErrEmbedding)
}
