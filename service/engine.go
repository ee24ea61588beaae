package service

import (
	"context"
	"log/slog"
	"time"

	"doc-search/meta"
	"doc-search/search"
	"doc-search/service/query"
)

// Engine is the request-independent state shared by every transport. It is built once by
// Bootstrap and only read afterwards.
type Engine struct {
	retriever    *search.Retriever
	synthesizer  *meta.Synthesizer
	embedTimeout time.Duration
	logger       *slog.Logger
}

func NewEngine(retriever *search.Retriever, synthesizer *meta.Synthesizer, embedTimeout time.Duration, logger *slog.Logger) *Engine {
	if synthesizer == nil {
		synthesizer = meta.NewSynthesizer(nil, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		retriever:    retriever,
		synthesizer:  synthesizer,
		embedTimeout: embedTimeout,
		logger:       logger,
	}
}

func (e *Engine) Store() *search.Store {
	return e.retriever.Store()
}

func (e *Engine) SynthesisEnabled() bool {
	return e.synthesizer.Enabled()
}

// BasicSearch returns the text of the document most similar to userQuery.
func (e *Engine) BasicSearch(ctx context.Context, userQuery string) (query.Response, error) {
	match, err := e.findBestMatch(ctx, userQuery)
	if err != nil {
		return query.Response{}, err
	}
	return query.Response{
		Message:    match.Text,
		DocumentID: match.ID,
		Score:      match.Score,
	}, nil
}

// SynthesizedSearch answers userQuery from the most similar document through the completion
// service. The answer is returned as the service produced it.
func (e *Engine) SynthesizedSearch(ctx context.Context, userQuery string) (query.Response, error) {
	if !e.synthesizer.Enabled() {
		return query.Response{}, meta.ErrNotConfigured
	}

	match, err := e.findBestMatch(ctx, userQuery)
	if err != nil {
		return query.Response{}, err
	}

	answer, err := e.synthesizer.Answer(ctx, match.Text, userQuery)
	if err != nil {
		return query.Response{}, err
	}
	return query.Response{
		Message:    answer,
		DocumentID: match.ID,
		Score:      match.Score,
	}, nil
}

// Rank returns the k documents most similar to userQuery.
func (e *Engine) Rank(ctx context.Context, userQuery string, k int) ([]search.Match, error) {
	ctx, cancel := e.withEmbedTimeout(ctx)
	defer cancel()
	return e.retriever.Rank(ctx, userQuery, k)
}

func (e *Engine) findBestMatch(ctx context.Context, userQuery string) (search.Match, error) {
	embedCtx, cancel := e.withEmbedTimeout(ctx)
	defer cancel()

	match, err := e.retriever.FindBestMatch(embedCtx, userQuery)
	if err != nil {
		return search.Match{}, err
	}
	e.logger.DebugContext(ctx, "best match", slog.String("document_id", match.ID), slog.Float64("score", match.Score))
	return match, nil
}

func (e *Engine) withEmbedTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.embedTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.embedTimeout)
}
