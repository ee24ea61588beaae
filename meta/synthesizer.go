package meta

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrServiceUnavailable wraps every failure of the completion service.
	ErrServiceUnavailable = errors.New("answer synthesis service unavailable")
	// ErrNotConfigured means no completion service was set up, e.g. no API key.
	ErrNotConfigured = errors.New("answer synthesis is not configured")
)

// Synthesizer asks a Completer to answer a query from a single context document and relays the
// answer unchanged. It never falls back to the context text.
type Synthesizer struct {
	completer    Completer
	systemPrompt string
	timeout      time.Duration
}

// NewSynthesizer returns a synthesizer bounded by timeout. A nil completer yields a synthesizer
// that always fails with ErrNotConfigured.
func NewSynthesizer(completer Completer, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synthesizer{
		completer:    completer,
		systemPrompt: GetSystemPrompt(),
		timeout:      timeout,
	}
}

func (s *Synthesizer) Enabled() bool {
	return s != nil && s.completer != nil
}

func (s *Synthesizer) Answer(ctx context.Context, contextText string, userQuery string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.completer.Complete(ctx, s.systemPrompt, BuildPrompt(contextText, userQuery))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return answer, nil
}
