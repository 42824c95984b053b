package similarity

import (
	"github.com/spigell/hh-matchmaker/internal/embedding"
	"github.com/spigell/hh-matchmaker/internal/numeralizer"
)

// DefaultMaxInputLength caps a category value when no limit is configured.
const DefaultMaxInputLength = 5000

// Models holds the two independent embedders used by every matcher. Vectors
// from A are only ever compared with vectors from A, and likewise for B.
type Models struct {
	A embedding.Embedder
	B embedding.Embedder
}

func (m Models) available() bool {
	return m.A != nil && m.B != nil
}

// Profile parameterizes the generic matcher for one category.
type Profile struct {
	Category       Category
	Ensemble       EnsembleFunc
	Reduce         Reduction
	MaxInputLength int
	// Scaler is optional.
	Scaler Scaler
}

// Limits bounds the input length per category. Category keys are matched
// the way ParseCategory reads them, since config loaders lowercase keys.
type Limits struct {
	MaxInputLength int            `mapstructure:"max-input-length"`
	Categories     map[string]int `mapstructure:"categories"`
}

// For returns the limit for c, falling back to MaxInputLength and then to
// DefaultMaxInputLength.
func (l Limits) For(c Category) int {
	for key, n := range l.Categories {
		if parsed, err := ParseCategory(key); err == nil && parsed == c && n > 0 {
			return n
		}
	}
	if l.MaxInputLength > 0 {
		return l.MaxInputLength
	}
	return DefaultMaxInputLength
}

var (
	candidateYears   = mustNumeralizer(numeralizer.ModeSum)
	requirementYears = mustNumeralizer(numeralizer.ModeAvg)
)

func mustNumeralizer(mode numeralizer.Mode) *numeralizer.Numeralizer {
	n, err := numeralizer.New(mode)
	if err != nil {
		panic(err)
	}
	return n
}

// Profiles returns the matcher configuration of every category.
func Profiles(limits Limits) map[Category]Profile {
	profiles := map[Category]Profile{
		Education:      {Ensemble: EducationEnsemble, Reduce: ReduceMax},
		Experience:     {Ensemble: ExperienceEnsemble, Reduce: ReduceMax, Scaler: ExperienceScaler(candidateYears, requirementYears)},
		TechnicalSkill: {Ensemble: SkillEnsemble, Reduce: ReduceMean},
		SoftSkill:      {Ensemble: SkillEnsemble, Reduce: ReduceMean},
		Tool:           {Ensemble: MeanEnsemble, Reduce: ReduceMean},
		Certification:  {Ensemble: MeanEnsemble, Reduce: ReduceMean},
		Designation:    {Ensemble: MeanEnsemble, Reduce: ReduceMean},
	}

	for category, profile := range profiles {
		profile.Category = category
		profile.MaxInputLength = limits.For(category)
		profiles[category] = profile
	}

	return profiles
}
