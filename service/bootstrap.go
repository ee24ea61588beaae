package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"doc-search/config"
	"doc-search/embedding"
	"doc-search/manifest"
	"doc-search/meta"
	"doc-search/search"
)

// Bootstrap loads the documents, embeds them, and wires the synthesizer, in that order. The
// returned Engine is ready to serve.
func Bootstrap(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Engine, error) {
	start := time.Now()

	records, err := manifest.Load(cfg.DocumentsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", search.ErrStartup, err)
	}
	logger.InfoContext(ctx, "loaded documents", slog.String("path", cfg.DocumentsPath), slog.Int("count", len(records)))

	var client *openai.Client
	if cfg.OpenAIAPIKey != "" {
		client = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	}

	embedder, err := NewEmbedder(cfg, client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", search.ErrStartup, err)
	}

	embedCtx, cancel := context.WithTimeout(ctx, cfg.EmbedTimeout)
	defer cancel()
	store, err := search.NewStore(embedCtx, records, embedder)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "embedded documents",
		slog.String("model", store.Model()),
		slog.Int("dimensions", store.Dimensions()),
		slog.Duration("elapsed", time.Since(start)),
	)

	var completer meta.Completer
	if client != nil {
		completer = meta.NewOpenAICompleter(client, cfg.ChatModel)
	} else {
		logger.WarnContext(ctx, "no OpenAI API key configured, synthesized search is disabled")
	}

	return NewEngine(
		search.NewRetriever(store),
		meta.NewSynthesizer(completer, cfg.CompletionTimeout),
		cfg.EmbedTimeout,
		logger,
	), nil
}

func NewOpenAIClient(apiKey string, baseURL string) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// NewEmbedder picks the embedding function named by cfg.EmbeddingProvider.
func NewEmbedder(cfg config.Config, client *openai.Client) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderHash:
		return embedding.NewHashing(cfg.HashDimensions), nil
	case config.ProviderOpenAI:
		if client == nil {
			return nil, fmt.Errorf("the %s embedding provider needs an API key", cfg.EmbeddingProvider)
		}
		return embedding.NewOpenAI(client, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
