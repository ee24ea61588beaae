package search

import (
	"context"
	"fmt"

	"doc-search/embedding"
	"doc-search/manifest"
)

// Document is one entry of the corpus with its precomputed embedding.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
}

// Store is the immutable corpus. Everything is computed in NewStore, there are no writers
// afterwards so any number of readers may share it.
type Store struct {
	documents  []Document
	embeddings map[string][]float32
	embedder   embedding.Embedder
	dimensions int
}

// NewStore embeds every record exactly once with embedder and keeps them in source order.
// Any failure is reported as ErrStartup.
func NewStore(ctx context.Context, records []manifest.Record, embedder embedding.Embedder) (*Store, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrStartup, manifest.ErrNoDocuments)
	}

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed %d documents with %s: %w", ErrStartup, len(records), embedder.Model(), err)
	}
	if len(vectors) != len(records) {
		return nil, fmt.Errorf("%w: %w: %d documents, %d embeddings", ErrStartup, embedding.ErrCount, len(records), len(vectors))
	}

	s := &Store{
		documents:  make([]Document, len(records)),
		embeddings: make(map[string][]float32, len(records)),
		embedder:   embedder,
		dimensions: len(vectors[0]),
	}
	for i, record := range records {
		id := record.ID.String()
		if _, exists := s.embeddings[id]; exists {
			return nil, fmt.Errorf("%w: duplicate document id %s", ErrStartup, id)
		}
		if len(vectors[i]) == 0 || len(vectors[i]) != s.dimensions {
			return nil, fmt.Errorf("%w: document %s has %d dimensions, expected %d", ErrStartup, id, len(vectors[i]), s.dimensions)
		}
		if err := checkVector(vectors[i]); err != nil {
			return nil, fmt.Errorf("%w: document %s cannot be searched: %w", ErrStartup, id, err)
		}
		s.documents[i] = Document{
			ID:        id,
			Text:      record.Text,
			Embedding: vectors[i],
		}
		s.embeddings[id] = vectors[i]
	}

	return s, nil
}

// EmptyStore returns a store with no documents. Every lookup against it fails with ErrNotFound.
func EmptyStore(embedder embedding.Embedder) *Store {
	return &Store{
		embeddings: map[string][]float32{},
		embedder:   embedder,
	}
}

// Documents returns the corpus in source order. The slice is a copy, the vectors are shared and
// must not be modified.
func (s *Store) Documents() []Document {
	return append([]Document(nil), s.documents...)
}

func (s *Store) Embedding(id string) ([]float32, bool) {
	vec, ok := s.embeddings[id]
	return vec, ok
}

func (s *Store) Len() int {
	return len(s.documents)
}

func (s *Store) Dimensions() int {
	return s.dimensions
}

// Model is the embedding model the corpus was embedded with, queries must use the same one.
func (s *Store) Model() string {
	return s.embedder.Model()
}
