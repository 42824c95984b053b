// Package embedding defines the text embedding capability consumed by the
// matchers, along with decorators shared by every backend.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is returned when two vectors of different length are
// compared.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Vector is a fixed-dimension embedding of one text.
type Vector []float64

// Embedder turns a text into a vector. Implementations must be deterministic
// for identical input and safe for concurrent use.
type Embedder interface {
	Encode(ctx context.Context, text string) (Vector, error)
}

// Func adapts a function to the Embedder interface.
type Func func(ctx context.Context, text string) (Vector, error)

func (f Func) Encode(ctx context.Context, text string) (Vector, error) {
	return f(ctx, text)
}

// Cosine returns the cosine similarity of a and b clamped to [0, 1].
// Negative similarity carries no relevance and zero-norm vectors score 0.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	denom := floats.Norm(a, 2) * floats.Norm(b, 2)
	if denom == 0 {
		return 0, nil
	}

	sim := floats.Dot(a, b) / denom
	switch {
	case sim < 0:
		return 0, nil
	case sim > 1:
		return 1, nil
	}
	return sim, nil
}
