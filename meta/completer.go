package meta

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultChatModel = openai.GPT3Dot5Turbo
)

var ErrMalformedResponse = errors.New("completion response has no choices")

// Completer produces a completion for a system and a user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// OpenAICompleter answers through the chat completions endpoint.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

type CompleterOption func(*OpenAICompleter)

func WithTemperature(temperature float32) CompleterOption {
	return func(c *OpenAICompleter) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) CompleterOption {
	return func(c *OpenAICompleter) {
		c.maxTokens = maxTokens
	}
}

func NewOpenAICompleter(client *openai.Client, model string, opts ...CompleterOption) *OpenAICompleter {
	if model == "" {
		model = DefaultChatModel
	}
	c := &OpenAICompleter{client: client, model: model}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	chatResponse, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    CreateConversation(systemPrompt, userPrompt),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate a chat completion with %s: %w", c.model, err)
	}
	if len(chatResponse.Choices) == 0 {
		return "", ErrMalformedResponse
	}
	return chatResponse.Choices[0].Message.Content, nil
}
