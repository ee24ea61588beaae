package service

import (
	"errors"
	"net/http"

	"doc-search/meta"
	"doc-search/search"
)

// Kind classifies an error for callers, retrieval failures and synthesis failures never share a kind.
type Kind string

const (
	KindStartup            Kind = "startup"
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindComputation        Kind = "computation"
	KindEmbedding          Kind = "embedding_unavailable"
	KindNotConfigured      Kind = "not_configured"
	KindServiceUnavailable Kind = "service_unavailable"
	KindInternal           Kind = "internal"
)

func KindOf(err error) Kind {
	switch {
	case errors.Is(err, search.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, search.ErrNotFound):
		return KindNotFound
	case errors.Is(err, search.ErrComputation):
		return KindComputation
	case errors.Is(err, search.ErrEmbedding):
		return KindEmbedding
	case errors.Is(err, search.ErrStartup):
		return KindStartup
	case errors.Is(err, meta.ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, meta.ErrServiceUnavailable):
		return KindServiceUnavailable
	default:
		return KindInternal
	}
}

func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput, KindNotConfigured:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindComputation:
		return http.StatusUnprocessableEntity
	case KindEmbedding:
		return http.StatusBadGateway
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the error text safe to hand back to a caller. Upstream failures are summarised
// rather than echoed.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindEmbedding:
		return "something went wrong talking to the embedding provider"
	case KindServiceUnavailable:
		return "something went wrong talking to the completion service"
	case KindInternal, KindStartup:
		return "something went wrong"
	default:
		return err.Error()
	}
}
