package domain

import (
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of two vectors.
// It fails with ErrInvalidInput on empty or mismatched vectors, and on
// zero-magnitude vectors, whose similarity is undefined.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty vector", ErrInvalidInput)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d != %d", ErrInvalidInput, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("%w: zero vector", ErrInvalidInput)
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) {
		return 0, fmt.Errorf("%w: similarity is NaN", ErrInvalidInput)
	}
	return sim, nil
}
