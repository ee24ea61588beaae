package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"doc-search/meta"
	"doc-search/search"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err        error
		wantKind   Kind
		wantStatus int
	}{
		{err: search.ErrInvalidInput, wantKind: KindInvalidInput, wantStatus: http.StatusBadRequest},
		{err: fmt.Errorf("wrapped: %w", search.ErrNotFound), wantKind: KindNotFound, wantStatus: http.StatusNotFound},
		{err: search.ErrComputation, wantKind: KindComputation, wantStatus: http.StatusUnprocessableEntity},
		{err: search.ErrEmbedding, wantKind: KindEmbedding, wantStatus: http.StatusBadGateway},
		{err: search.ErrStartup, wantKind: KindStartup, wantStatus: http.StatusInternalServerError},
		{err: meta.ErrNotConfigured, wantKind: KindNotConfigured, wantStatus: http.StatusBadRequest},
		{err: fmt.Errorf("%w: timeout", meta.ErrServiceUnavailable), wantKind: KindServiceUnavailable, wantStatus: http.StatusServiceUnavailable},
		{err: errors.New("mystery"), wantKind: KindInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.wantKind), func(t *testing.T) {
			kind := KindOf(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantStatus, kind.StatusCode())
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, search.ErrInvalidInput.Error(), PublicMessage(search.ErrInvalidInput))

	upstream := fmt.Errorf("%w: api key sk-secret rejected", meta.ErrServiceUnavailable)
	assert.NotContains(t, PublicMessage(upstream), "sk-secret")
}
