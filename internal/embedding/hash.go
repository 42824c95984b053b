package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultHashDimensions = 256

// HashEmbedder is an offline model built on feature hashing of word tokens
// and character trigrams. It has no notion of meaning beyond surface
// overlap, but it is deterministic and needs no network access. Two
// instances with different seeds behave as two independent models.
type HashEmbedder struct {
	dims int
	seed string
}

// NewHashEmbedder returns a hashing model with dims dimensions.
func NewHashEmbedder(dims int, seed string) *HashEmbedder {
	if dims <= 0 {
		dims = defaultHashDimensions
	}
	return &HashEmbedder{dims: dims, seed: seed}
}

// Dimensions reports the vector length.
func (h *HashEmbedder) Dimensions() int {
	return h.dims
}

func (h *HashEmbedder) Encode(_ context.Context, text string) (Vector, error) {
	vec := make(Vector, h.dims)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '+' && r != '#'
	})

	for _, word := range words {
		h.add(vec, "w:"+word, 1)

		padded := []rune("^" + word + "$")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vec, "t:"+string(padded[i:i+3]), 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec, nil
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec, nil
}

func (h *HashEmbedder) add(vec Vector, feature string, weight float64) {
	hasher := fnv.New64a()
	hasher.Write([]byte(h.seed))
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	idx := int(sum % uint64(h.dims))
	// The top bit picks the sign.
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
