package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	DefaultHashDimensions = 256
)

// Hashing is a local embedder that projects lower-cased words into a fixed number of signed
// buckets and L2-normalises the result. It has no notion of meaning beyond shared vocabulary,
// but it is deterministic, offline, and cheap.
type Hashing struct {
	dimensions int
}

func NewHashing(dimensions int) *Hashing {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &Hashing{dimensions: dimensions}
}

func (h *Hashing) Model() string {
	return fmt.Sprintf("hashing-%d", h.dimensions)
}

func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = h.vector(text)
	}
	return vectors, nil
}

func (h *Hashing) vector(text string) []float32 {
	vec := make([]float32, h.dimensions)
	for _, word := range tokenize(text) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(word))
		sum := hasher.Sum32()

		// Top bit picks the sign so unrelated words tend to cancel rather than pile up
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[int(sum%uint32(h.dimensions))] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
