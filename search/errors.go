package search

import "errors"

var (
	// ErrStartup means the document store could not be built.
	ErrStartup = errors.New("document store failed to start")
	// ErrInvalidInput means the caller sent an empty query.
	ErrInvalidInput = errors.New("query must not be empty")
	// ErrNotFound means there was no candidate document to return.
	ErrNotFound = errors.New("no matching document")
	// ErrComputation means a similarity score was undefined for the vectors involved.
	ErrComputation = errors.New("similarity is undefined")
	// ErrEmbedding means the embedding provider failed while embedding a query.
	ErrEmbedding = errors.New("failed to embed query")
)
