package similarity

import (
	"context"
	"fmt"

	"github.com/spigell/hh-matchmaker/internal/numeralizer"
)

// EnsembleFunc combines the model A and model B scores of one requirement
// item into a single value.
type EnsembleFunc func(a, b float64) float64

// Scaler returns a factor applied to the reduced score. It receives the raw
// candidate and requirement texts.
type Scaler func(ctx context.Context, candidate, requirement string) (float64, error)

// Reduction aggregates per-item ensemble values into the category score.
type Reduction int

const (
	ReduceMean Reduction = iota
	ReduceMax
)

func (r Reduction) String() string {
	switch r {
	case ReduceMean:
		return "mean"
	case ReduceMax:
		return "max"
	default:
		return fmt.Sprintf("reduction(%d)", int(r))
	}
}

// Apply reduces values. An empty slice reduces to 0.
func (r Reduction) Apply(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	switch r {
	case ReduceMax:
		result := values[0]
		for _, v := range values[1:] {
			result = max(result, v)
		}
		return result
	default:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}

const (
	boostFactor = 1.2
	dampFactor  = 0.7
)

func boost(v float64) float64 {
	return min(1, v*boostFactor)
}

// MeanEnsemble averages both models without adjustment.
func MeanEnsemble(a, b float64) float64 {
	return (a + b) / 2
}

// EducationEnsemble boosts the stronger model when the weaker one still
// agrees above 0.5. Equal confident scores are kept, everything else is
// damped: a lone strong score such as (0.95, 0.3) is damped, not boosted.
func EducationEnsemble(a, b float64) float64 {
	switch {
	case a > b && b > 0.5:
		a = boost(a)
	case b > a && a > 0.5:
		b = boost(b)
	case a == b && a > 0.5:
	default:
		a *= dampFactor
		b *= dampFactor
	}
	return (a + b) / 2
}

// ExperienceEnsemble damps each model below 0.5.
func ExperienceEnsemble(a, b float64) float64 {
	if a < 0.5 {
		a *= dampFactor
	}
	if b < 0.5 {
		b *= dampFactor
	}
	return (a + b) / 2
}

// SkillEnsemble boosts confident model A scores and damps weak model B ones.
func SkillEnsemble(a, b float64) float64 {
	if a > 0.7 {
		a = boost(a)
	}
	if b < 0.3 {
		b *= 0.8
	}
	return (a + b) / 2
}

// ExperienceScaler compares candidate and requirement years. The candidate
// side is reduced with candidate and the requirement side with requirement.
// When either side has no years the factor is 1.
func ExperienceScaler(candidate, requirement *numeralizer.Numeralizer) Scaler {
	return func(_ context.Context, candidateText, requirementText string) (float64, error) {
		have, err := candidate.Years(candidateText)
		if err != nil {
			return 0, fmt.Errorf("candidate years: %w", err)
		}

		want, err := requirement.Years(requirementText)
		if err != nil {
			return 0, fmt.Errorf("requirement years: %w", err)
		}

		if have == 0 || want == 0 {
			return 1, nil
		}
		return have / want, nil
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
