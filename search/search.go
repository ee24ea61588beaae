package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"doc-search/embedding"
)

const (
	tracerName = "doc-search/search"
)

// Match is a document together with its similarity to the query.
type Match struct {
	Document
	Score float64
}

// Retriever finds the documents of a Store most similar to a query. Queries are embedded with
// the same Embedder the store was built with.
type Retriever struct {
	store  *Store
	tracer trace.Tracer
}

func NewRetriever(store *Store) *Retriever {
	return &Retriever{
		store:  store,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *Retriever) Store() *Store {
	return r.store
}

// FindBestMatch returns the single document with the highest cosine similarity to query. When
// several documents share the highest score the earliest one in the store wins.
func (r *Retriever) FindBestMatch(ctx context.Context, query string) (Match, error) {
	ctx, span := r.tracer.Start(ctx, "search.FindBestMatch")
	defer span.End()

	match, err := r.findBestMatch(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Match{}, err
	}
	span.SetAttributes(
		attribute.String("search.document_id", match.ID),
		attribute.Float64("search.score", match.Score),
	)
	return match, nil
}

func (r *Retriever) findBestMatch(ctx context.Context, query string) (Match, error) {
	queryVector, err := r.embedQuery(ctx, query)
	if err != nil {
		return Match{}, err
	}

	bestScore := math.Inf(-1)
	var bestDoc *Document
	for i := range r.store.documents {
		doc := &r.store.documents[i]
		score, err := CosineSimilarity(queryVector, doc.Embedding)
		if err != nil {
			return Match{}, fmt.Errorf("scoring document %s: %w", doc.ID, err)
		}
		if score > bestScore {
			bestScore = score
			bestDoc = doc
		}
	}

	if bestDoc == nil {
		return Match{}, fmt.Errorf("%w: store has %d documents", ErrNotFound, r.store.Len())
	}
	return Match{Document: *bestDoc, Score: bestScore}, nil
}

// Rank scores every document against query and returns the k best, highest score first. Ties
// keep store order. k <= 0 returns every document.
func (r *Retriever) Rank(ctx context.Context, query string, k int) ([]Match, error) {
	ctx, span := r.tracer.Start(ctx, "search.Rank", trace.WithAttributes(attribute.Int("search.k", k)))
	defer span.End()

	matches, err := r.rank(ctx, query, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.matches", len(matches)))
	return matches, nil
}

func (r *Retriever) rank(ctx context.Context, query string, k int) ([]Match, error) {
	queryVector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if r.store.Len() == 0 {
		return nil, fmt.Errorf("%w: store has no documents", ErrNotFound)
	}

	matches := make([]Match, 0, r.store.Len())
	for _, doc := range r.store.documents {
		score, err := CosineSimilarity(queryVector, doc.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring document %s: %w", doc.ID, err)
		}
		matches = append(matches, Match{Document: doc, Score: score})
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })

	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidInput
	}
	vec, err := embedding.EmbedOne(ctx, r.store.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("%w with %s: %w", ErrEmbedding, r.store.Model(), err)
	}
	return vec, nil
}
