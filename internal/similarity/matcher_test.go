package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/spigell/hh-matchmaker/internal/embedding"
	"github.com/spigell/hh-matchmaker/internal/textnorm"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const eps = 1e-9

type fakeModel struct {
	mu      sync.Mutex
	vectors map[string]embedding.Vector
	calls   map[string]int
	err     error
}

func newFakeModel(vectors map[string]embedding.Vector) *fakeModel {
	return &fakeModel{vectors: vectors, calls: make(map[string]int)}
}

func (f *fakeModel) Encode(_ context.Context, text string) (embedding.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[text]++
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

func (f *fakeModel) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int
	for _, c := range f.calls {
		n += c
	}
	return n
}

// unit returns a 2D unit vector whose cosine with [1, 0] is x.
func unit(x float64) embedding.Vector {
	return embedding.Vector{x, math.Sqrt(1 - x*x)}
}

func newTestMatcher(category Category, a, b embedding.Embedder) *Matcher {
	return NewMatcher(Profiles(Limits{})[category], Models{A: a, B: b}, zap.NewNop())
}

func TestEducationBachelorAgainstMaster(t *testing.T) {
	t.Parallel()

	const (
		bachelor = "Bachelor of Science in Computer Science"
		master   = "Master of Science in Computer Science"
	)

	a := newFakeModel(map[string]embedding.Vector{master: unit(1), bachelor: unit(0.8)})
	b := newFakeModel(map[string]embedding.Vector{master: unit(1), bachelor: unit(0.7)})

	m := newTestMatcher(Education, a, b)
	if err := m.SetInputs(bachelor, master); err != nil {
		t.Fatalf("set inputs: %v", err)
	}

	score, err := m.MakeMatch(context.Background())
	if err != nil {
		t.Fatalf("make match: %v", err)
	}

	// Model A leads and model B agrees above 0.5, so A is boosted to 0.96.
	want := (0.96 + 0.7) / 2
	if math.Abs(score-want) > eps {
		t.Fatalf("expected %.4f, got %.4f", want, score)
	}
	if score < 0.5 || score > 0.95 {
		t.Fatalf("expected a moderate-high score, got %.4f", score)
	}
}

func TestIdenticalItemsScoreAtLeastPlainAverage(t *testing.T) {
	t.Parallel()

	vectors := map[string]embedding.Vector{
		"golang":     {1, 0, 0},
		"kubernetes": {0, 1, 0},
		"postgres":   {0, 0, 1},
	}
	const items = "golang, kubernetes, postgres"

	for _, category := range Categories() {
		category := category
		t.Run(category.String(), func(t *testing.T) {
			t.Parallel()

			m := newTestMatcher(category, newFakeModel(vectors), newFakeModel(vectors))
			if err := m.SetInputs(items, items); err != nil {
				t.Fatalf("set inputs: %v", err)
			}

			score, err := m.MakeMatch(context.Background())
			if err != nil {
				t.Fatalf("make match: %v", err)
			}
			if math.Abs(score-1) > eps {
				t.Fatalf("expected 1 for identical items, got %v", score)
			}

			for i, j := range m.Scores().Assignment {
				if i != j {
					t.Fatalf("expected item %d to match itself, got %d", i, j)
				}
			}
		})
	}
}

func TestEmptyItemListScoresZero(t *testing.T) {
	t.Parallel()

	model := newFakeModel(map[string]embedding.Vector{"go": {1}})

	for _, tc := range []struct {
		name        string
		candidate   string
		requirement string
	}{
		{name: "candidate", candidate: " , ,", requirement: "go"},
		{name: "requirement", candidate: "go", requirement: ","},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newTestMatcher(TechnicalSkill, model, model)
			if err := m.SetInputs(tc.candidate, tc.requirement); err != nil {
				t.Fatalf("set inputs: %v", err)
			}

			score, err := m.MakeMatch(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score != 0 {
				t.Fatalf("expected 0, got %v", score)
			}
		})
	}
}

func TestGreedyAssignmentConsumesCandidates(t *testing.T) {
	t.Parallel()

	vectors := map[string]embedding.Vector{
		"c1": {1, 0},
		"c2": {0, 1},
		"r1": {1, 0},
		"r2": unit(0.9),
		"r3": unit(0.8),
	}
	a := newFakeModel(vectors)
	b := newFakeModel(vectors)

	m := newTestMatcher(Tool, a, b)
	if err := m.SetInputs("c1, c2", "r1, r2, r3"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}

	score, err := m.MakeMatch(context.Background())
	if err != nil {
		t.Fatalf("make match: %v", err)
	}
	if score < 0 || score > 1 {
		t.Fatalf("score out of range: %v", score)
	}

	scores := m.Scores()
	wantAssignment := []int{0, 1, -1}
	seen := make(map[int]bool)
	for i, j := range scores.Assignment {
		if j != wantAssignment[i] {
			t.Fatalf("requirement %d: expected candidate %d, got %d", i, wantAssignment[i], j)
		}
		if j >= 0 && seen[j] {
			t.Fatalf("candidate %d assigned twice", j)
		}
		seen[j] = true
	}

	// r1 claims c1 before r2 and r3 get a chance at it.
	if scores.ModelA[1] >= 0.9 {
		t.Fatalf("expected r2 to settle for c2, got model A score %v", scores.ModelA[1])
	}
	if scores.ModelA[2] != 0 || scores.ModelB[2] != 1 {
		t.Fatalf("expected default pair (0, 1) for unmatched item, got (%v, %v)", scores.ModelA[2], scores.ModelB[2])
	}
	if len(scores.Ensemble) != 2 {
		t.Fatalf("expected unmatched item to be skipped, got ensemble %v", scores.Ensemble)
	}

	// Candidate vectors are computed once per call.
	if got := a.total(); got != 5 {
		t.Fatalf("expected 5 model A calls, got %d", got)
	}
}

func TestModelBFollowsModelAWinner(t *testing.T) {
	t.Parallel()

	a := newFakeModel(map[string]embedding.Vector{"req": {1, 0}, "x": unit(0.9), "y": unit(0.6)})
	b := newFakeModel(map[string]embedding.Vector{"req": {1, 0}, "x": unit(0.4), "y": unit(0.95)})

	m := newTestMatcher(Certification, a, b)
	if err := m.SetInputs("x, y", "req"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}
	if _, err := m.MakeMatch(context.Background()); err != nil {
		t.Fatalf("make match: %v", err)
	}

	scores := m.Scores()
	if scores.Assignment[0] != 0 {
		t.Fatalf("expected model A winner x, got %d", scores.Assignment[0])
	}
	if math.Abs(scores.ModelB[0]-0.4) > eps {
		t.Fatalf("expected model B score of x, got %v", scores.ModelB[0])
	}
}

func TestExperienceFactor(t *testing.T) {
	t.Parallel()

	same := embedding.Vector{1, 0}
	vectors := map[string]embedding.Vector{"4 years": same, "2 years": same, "1 year": same}

	for _, tc := range []struct {
		name       string
		candidate  string
		want       float64
		wantFactor float64
	}{
		{name: "over experienced", candidate: "4 years", want: 1, wantFactor: 2},
		{name: "under experienced", candidate: "1 year", want: 0.5, wantFactor: 0.5},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newTestMatcher(Experience, newFakeModel(vectors), newFakeModel(vectors))
			if err := m.SetInputs(tc.candidate, "2 years"); err != nil {
				t.Fatalf("set inputs: %v", err)
			}

			score, err := m.MakeMatch(context.Background())
			if err != nil {
				t.Fatalf("make match: %v", err)
			}
			if score > 1 {
				t.Fatalf("score exceeds 1: %v", score)
			}
			if math.Abs(score-tc.want) > eps {
				t.Fatalf("expected %v, got %v", tc.want, score)
			}
			if factor := m.Scores().Factor; math.Abs(factor-tc.wantFactor) > eps {
				t.Fatalf("expected factor %v, got %v", tc.wantFactor, factor)
			}
		})
	}
}

func TestMatcherStateErrors(t *testing.T) {
	t.Parallel()

	model := newFakeModel(map[string]embedding.Vector{"go": {1}})

	if _, err := NewMatcher(Profiles(Limits{})[Tool], Models{A: model}, nil).MakeMatch(context.Background()); !errors.Is(err, ErrModelsUnavailable) {
		t.Fatalf("expected ErrModelsUnavailable, got %v", err)
	}

	m := newTestMatcher(Tool, model, model)
	if _, err := m.MakeMatch(context.Background()); !errors.Is(err, ErrInputsNotSet) {
		t.Fatalf("expected ErrInputsNotSet, got %v", err)
	}
	if _, err := m.SimilarityScore(context.Background()); !errors.Is(err, ErrInputsNotSet) {
		t.Fatalf("expected ErrInputsNotSet from lazy score, got %v", err)
	}

	for _, in := range [][2]string{{"", "go"}, {"go", "  "}} {
		if err := m.SetInputs(in[0], in[1]); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("SetInputs(%q, %q): expected ErrEmptyInput, got %v", in[0], in[1], err)
		}
	}

	if err := m.SetInputs("go", "go"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}
	m.Reset()
	if _, err := m.MakeMatch(context.Background()); !errors.Is(err, ErrInputsNotSet) {
		t.Fatalf("expected ErrInputsNotSet after reset, got %v", err)
	}
}

func TestSetInputsRejectsLongValues(t *testing.T) {
	t.Parallel()

	model := newFakeModel(nil)
	profile := Profiles(Limits{Categories: map[string]int{"tool": 10}})[Tool]
	m := NewMatcher(profile, Models{A: model, B: model}, nil)

	err := m.SetInputs(strings.Repeat("x", 11), "go")
	if !errors.Is(err, textnorm.ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestComputeErrorWrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("model offline")
	a := newFakeModel(nil)
	a.err = cause

	m := newTestMatcher(SoftSkill, a, newFakeModel(nil))
	if err := m.SetInputs("teamwork", "communication"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}

	_, err := m.MakeMatch(context.Background())
	var computeErr *ComputeError
	if !errors.As(err, &computeErr) {
		t.Fatalf("expected ComputeError, got %T: %v", err, err)
	}
	if computeErr.Category != SoftSkill {
		t.Fatalf("expected category %s, got %s", SoftSkill, computeErr.Category)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestDimensionMismatchIsComputeError(t *testing.T) {
	t.Parallel()

	a := newFakeModel(map[string]embedding.Vector{"go": {1, 0}, "golang": {1, 0, 0}})
	m := newTestMatcher(Tool, a, a)
	if err := m.SetInputs("golang", "go"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}

	_, err := m.MakeMatch(context.Background())
	if !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	var computeErr *ComputeError
	if !errors.As(err, &computeErr) {
		t.Fatalf("expected ComputeError, got %T", err)
	}
}

func TestSimilarityScoreIsLazyAndCached(t *testing.T) {
	t.Parallel()

	a := newFakeModel(map[string]embedding.Vector{"go": {1, 0}, "golang": unit(0.9)})
	m := newTestMatcher(Tool, a, a)
	if err := m.SetInputs("golang", "go"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}

	first, err := m.SimilarityScore(context.Background())
	if err != nil {
		t.Fatalf("similarity score: %v", err)
	}
	calls := a.total()

	second, err := m.SimilarityScore(context.Background())
	if err != nil {
		t.Fatalf("similarity score: %v", err)
	}
	if first != second {
		t.Fatalf("expected cached score %v, got %v", first, second)
	}
	if a.total() != calls {
		t.Fatalf("expected no embedding calls for cached score")
	}
}

func TestMatcherLogsCategory(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	a := newFakeModel(map[string]embedding.Vector{"go": {1}})

	m := NewMatcher(Profiles(Limits{})[Designation], Models{A: a, B: a}, zap.New(core))
	if err := m.SetInputs("go", "go"); err != nil {
		t.Fatalf("set inputs: %v", err)
	}
	if _, err := m.MakeMatch(context.Background()); err != nil {
		t.Fatalf("make match: %v", err)
	}

	entries := observed.FilterMessage("match computed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 match entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["category"]; got != "DESIGNATION" {
		t.Fatalf("expected category field, got %v", got)
	}
}
