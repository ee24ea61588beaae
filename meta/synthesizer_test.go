package meta

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompleter struct {
	systemPrompt string
	userPrompt   string
	answer       string
	err          error
	block        bool
}

func (r *recordingCompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	r.systemPrompt = systemPrompt
	r.userPrompt = userPrompt
	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.answer, r.err
}

func TestSynthesizer_Answer(t *testing.T) {
	completer := &recordingCompleter{answer: "  The capital of France is Paris.  "}
	s := NewSynthesizer(completer, time.Second)

	answer, err := s.Answer(context.Background(), "Paris is the capital of France", "What is the capital of France?")
	require.NoError(t, err)

	// Relayed verbatim, whitespace included
	assert.Equal(t, "  The capital of France is Paris.  ", answer)
	assert.Equal(t, GetSystemPrompt(), completer.systemPrompt)
	assert.Equal(t, BuildPrompt("Paris is the capital of France", "What is the capital of France?"), completer.userPrompt)
}

func TestSynthesizer_Failure(t *testing.T) {
	completer := &recordingCompleter{err: errors.New("502 bad gateway")}
	s := NewSynthesizer(completer, time.Second)

	answer, err := s.Answer(context.Background(), "context", "query")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Empty(t, answer, "must not fall back to the context text")
}

func TestSynthesizer_Timeout(t *testing.T) {
	completer := &recordingCompleter{block: true}
	s := NewSynthesizer(completer, 10*time.Millisecond)

	_, err := s.Answer(context.Background(), "context", "query")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynthesizer_NotConfigured(t *testing.T) {
	s := NewSynthesizer(nil, 0)
	assert.False(t, s.Enabled())

	_, err := s.Answer(context.Background(), "context", "query")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
}
