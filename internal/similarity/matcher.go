package similarity

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/hh-matchmaker/internal/embedding"
	"github.com/spigell/hh-matchmaker/internal/logger"
	"github.com/spigell/hh-matchmaker/internal/textnorm"
	"github.com/spigell/hh-matchmaker/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Scores exposes the buffers filled by the last MakeMatch call.
type Scores struct {
	// ModelA and ModelB hold one score per requirement item.
	ModelA []float64
	ModelB []float64
	// Ensemble holds the combined value of every scored item.
	Ensemble []float64
	// Assignment maps a requirement index to the candidate index it claimed,
	// or -1 when no candidate was left.
	Assignment []int
	Factor     float64
}

type vectors struct {
	a embedding.Vector
	b embedding.Vector
}

// Matcher scores one category. It is stateful between SetInputs and Reset
// and must not be shared between goroutines.
type Matcher struct {
	profile   Profile
	models    Models
	logger    *zap.Logger
	maxLogLen int

	candidateText   string
	requirementText string
	candidates      []string
	requirements    []string
	inputsSet       bool

	scores Scores
	score  float64
	scored bool
}

// Option customizes a Matcher.
type Option func(*Matcher)

// WithMaxLogLength bounds the item previews written to debug logs.
func WithMaxLogLength(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxLogLen = n
		}
	}
}

// NewMatcher builds a matcher for profile backed by models.
func NewMatcher(profile Profile, models Models, log *zap.Logger, opts ...Option) *Matcher {
	if profile.Ensemble == nil {
		profile.Ensemble = MeanEnsemble
	}

	m := &Matcher{
		profile:   profile,
		models:    models,
		logger:    logger.WithCategory(log, profile.Category.String()),
		maxLogLen: defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Category reports the category scored by m.
func (m *Matcher) Category() Category {
	return m.profile.Category
}

// SetInputs normalizes and splits both comma-delimited values. Any previous
// score is discarded.
func (m *Matcher) SetInputs(candidate, requirement string) error {
	if strings.TrimSpace(candidate) == "" || strings.TrimSpace(requirement) == "" {
		return ErrEmptyInput
	}

	candidates, err := textnorm.NormalizeList(candidate, m.profile.MaxInputLength)
	if err != nil {
		return fmt.Errorf("candidate %s: %w", m.profile.Category, err)
	}

	requirements, err := textnorm.NormalizeList(requirement, m.profile.MaxInputLength)
	if err != nil {
		return fmt.Errorf("requirement %s: %w", m.profile.Category, err)
	}

	m.Reset()
	m.candidateText = strings.TrimSpace(candidate)
	m.requirementText = strings.TrimSpace(requirement)
	m.candidates = candidates
	m.requirements = requirements
	m.inputsSet = true

	m.logger.Debug("inputs set",
		zap.Int("candidate_items", len(candidates)),
		zap.Int("requirement_items", len(requirements)),
		zap.Strings("candidate_preview", utils.Previews(candidates, m.maxLogLen)),
		zap.Strings("requirement_preview", utils.Previews(requirements, m.maxLogLen)),
	)

	return nil
}

// MakeMatch runs the greedy dual-model assignment and returns the category
// score in [0, 1].
func (m *Matcher) MakeMatch(ctx context.Context) (float64, error) {
	if !m.models.available() {
		return 0, ErrModelsUnavailable
	}
	if !m.inputsSet {
		return 0, ErrInputsNotSet
	}

	m.scores = Scores{Factor: 1}
	m.score = 0
	m.scored = false

	if len(m.candidates) == 0 || len(m.requirements) == 0 {
		m.scored = true
		return 0, nil
	}

	if err := m.assign(ctx); err != nil {
		return 0, &ComputeError{Category: m.profile.Category, Err: err}
	}

	for i := range m.requirements {
		a, b := m.scores.ModelA[i], m.scores.ModelB[i]
		if a == 0 || b == 0 {
			continue
		}
		m.scores.Ensemble = append(m.scores.Ensemble, clamp(m.profile.Ensemble(a, b)))
	}

	score := m.profile.Reduce.Apply(m.scores.Ensemble)

	if m.profile.Scaler != nil {
		factor, err := m.profile.Scaler(ctx, m.candidateText, m.requirementText)
		if err != nil {
			return 0, &ComputeError{Category: m.profile.Category, Err: fmt.Errorf("scale: %w", err)}
		}
		m.scores.Factor = factor
		score *= factor
	}

	m.score = clamp(score)
	m.scored = true

	m.logger.Debug("match computed",
		zap.Float64("score", m.score),
		zap.Float64("factor", m.scores.Factor),
		zap.Stringer("reduction", m.profile.Reduce),
		zap.Float64s("model_a", m.scores.ModelA),
		zap.Float64s("model_b", m.scores.ModelB),
		zap.Ints("assignment", m.scores.Assignment),
	)

	return m.score, nil
}

// assign walks requirement items in order. Each one claims the unconsumed
// candidate with the highest model A similarity; model B contributes the
// score of that same candidate.
func (m *Matcher) assign(ctx context.Context) error {
	cache := make([]*vectors, len(m.candidates))
	consumed := make([]bool, len(m.candidates))

	for i, item := range m.requirements {
		req, err := m.encode(ctx, item)
		if err != nil {
			return fmt.Errorf("requirement item %d: %w", i, err)
		}

		best, bestA, bestB := -1, 0.0, 1.0

		for j, candidate := range m.candidates {
			if consumed[j] {
				continue
			}

			if cache[j] == nil {
				vec, err := m.encode(ctx, candidate)
				if err != nil {
					return fmt.Errorf("candidate item %d: %w", j, err)
				}
				cache[j] = &vec
			}

			a, err := embedding.Cosine(req.a, cache[j].a)
			if err != nil {
				return fmt.Errorf("model A similarity: %w", err)
			}
			b, err := embedding.Cosine(req.b, cache[j].b)
			if err != nil {
				return fmt.Errorf("model B similarity: %w", err)
			}

			if a > bestA {
				best, bestA, bestB = j, a, b
			}
		}

		if best >= 0 {
			consumed[best] = true
		}

		m.scores.ModelA = append(m.scores.ModelA, bestA)
		m.scores.ModelB = append(m.scores.ModelB, bestB)
		m.scores.Assignment = append(m.scores.Assignment, best)
	}

	return nil
}

func (m *Matcher) encode(ctx context.Context, text string) (vectors, error) {
	a, err := m.models.A.Encode(ctx, text)
	if err != nil {
		return vectors{}, fmt.Errorf("model A: %w", err)
	}
	b, err := m.models.B.Encode(ctx, text)
	if err != nil {
		return vectors{}, fmt.Errorf("model B: %w", err)
	}
	return vectors{a: a, b: b}, nil
}

// SimilarityScore returns the last score, computing it first if needed.
func (m *Matcher) SimilarityScore(ctx context.Context) (float64, error) {
	if m.scored {
		return m.score, nil
	}
	return m.MakeMatch(ctx)
}

// Scores returns a copy of the buffers filled by the last MakeMatch call.
func (m *Matcher) Scores() Scores {
	return Scores{
		ModelA:     append([]float64(nil), m.scores.ModelA...),
		ModelB:     append([]float64(nil), m.scores.ModelB...),
		Ensemble:   append([]float64(nil), m.scores.Ensemble...),
		Assignment: append([]int(nil), m.scores.Assignment...),
		Factor:     m.scores.Factor,
	}
}

// Reset clears inputs and score buffers.
func (m *Matcher) Reset() {
	m.candidateText = ""
	m.requirementText = ""
	m.candidates = nil
	m.requirements = nil
	m.inputsSet = false
	m.scores = Scores{}
	m.score = 0
	m.scored = false
}
