package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel = string(openai.SmallEmbedding3)
)

// OpenAI generates embeddings with the OpenAI embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddingResponse, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings with %s: %w", o.model, err)
	}
	if len(embeddingResponse.Data) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d embeddings", ErrCount, len(texts), len(embeddingResponse.Data))
	}

	// The API tags every vector with the index of its input, don't trust response ordering
	vectors := make([][]float32, len(texts))
	for _, data := range embeddingResponse.Data {
		if data.Index < 0 || data.Index >= len(texts) || vectors[data.Index] != nil {
			return nil, fmt.Errorf("%w: bad or repeated index %d", ErrCount, data.Index)
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}
