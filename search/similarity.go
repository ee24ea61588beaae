package search

import (
	"fmt"
	"math"
)

// CosineSimilarity computes dot(a,b) / (|a| * |b|) as a float64. Vectors of different
// length, empty vectors, and zero-magnitude vectors have no defined similarity and return
// ErrComputation instead of NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d vs %d", ErrComputation, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", ErrComputation)
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("%w: zero-magnitude vector", ErrComputation)
	}
	score := dot / (math.Sqrt(na2) * math.Sqrt(nb2))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: non-finite score", ErrComputation)
	}
	return score, nil
}

// checkVector reports a vector that no query could ever be scored against.
func checkVector(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", ErrComputation)
	}
	var norm2 float64
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite component", ErrComputation)
		}
		norm2 += f * f
	}
	if norm2 == 0 {
		return fmt.Errorf("%w: zero-magnitude vector", ErrComputation)
	}
	return nil
}
