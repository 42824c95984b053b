// Package engine runs every category matcher for a candidate and requirement
// pair and assembles the report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/spigell/hh-matchmaker/internal/logger"
	"github.com/spigell/hh-matchmaker/internal/similarity"
	"go.uber.org/zap"
)

// ErrNoDocuments is returned when neither document is provided.
var ErrNoDocuments = errors.New("candidate and requirement documents are missing")

// CategoryMatcher is the part of similarity.Matcher the engine drives.
type CategoryMatcher interface {
	SetInputs(candidate, requirement string) error
	MakeMatch(ctx context.Context) (float64, error)
}

// MatcherFactory builds a fresh matcher for one call.
type MatcherFactory func(profile similarity.Profile, models similarity.Models, log *zap.Logger) CategoryMatcher

// Engine owns one matcher factory per category and the shared embedders.
type Engine struct {
	models    similarity.Models
	logger    *zap.Logger
	limits    similarity.Limits
	maxLogLen int
	factories map[similarity.Category]MatcherFactory
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLimits sets the input length limits.
func WithLimits(l similarity.Limits) Option {
	return func(e *Engine) {
		e.limits = l
	}
}

// WithMaxLogLength bounds the item previews written by matchers.
func WithMaxLogLength(n int) Option {
	return func(e *Engine) {
		e.maxLogLen = n
	}
}

// WithMatcherFactory replaces the matcher used for category.
func WithMatcherFactory(category similarity.Category, factory MatcherFactory) Option {
	return func(e *Engine) {
		if factory != nil {
			e.factories[category] = factory
		}
	}
}

// New returns an Engine scoring with models.
func New(models similarity.Models, opts ...Option) *Engine {
	e := &Engine{
		models:    models,
		logger:    zap.NewNop(),
		factories: make(map[similarity.Category]MatcherFactory),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) newMatcher(profile similarity.Profile) CategoryMatcher {
	if factory, ok := e.factories[profile.Category]; ok {
		return factory(profile, e.models, e.logger)
	}
	return similarity.NewMatcher(profile, e.models, e.logger, similarity.WithMaxLogLength(e.maxLogLen))
}

type result struct {
	category similarity.Category
	score    float64
	err      error
}

// Match scores every category present on both sides concurrently and waits
// for all of them. A failing category scores 0 and never affects the others.
// Only a call without any document is an error.
func (e *Engine) Match(ctx context.Context, candidate, requirement Document) (Report, error) {
	if candidate == nil && requirement == nil {
		return nil, ErrNoDocuments
	}

	report := NewReport()
	if candidate == nil || requirement == nil {
		e.logger.Warn("one document is missing, returning empty report",
			zap.Bool("candidate", candidate != nil),
			zap.Bool("requirement", requirement != nil),
		)
		return report, nil
	}

	profiles := similarity.Profiles(e.limits)
	results := make(chan result, len(profiles))
	var wg sync.WaitGroup

	start := time.Now()
	for _, category := range similarity.Categories() {
		cand := candidate.Get(category)
		req := requirement.Get(category)
		if strings.TrimSpace(cand) == "" || strings.TrimSpace(req) == "" {
			e.logger.Debug("skip category without input", zap.String(logger.FieldCategory, category.String()))
			continue
		}

		wg.Add(1)
		go func(profile similarity.Profile) {
			defer wg.Done()
			score, err := e.runTask(ctx, profile, cand, req)
			results <- result{category: profile.Category, score: score, err: err}
		}(profiles[category])
	}

	wg.Wait()
	close(results)

	var failed int
	for res := range results {
		if res.err != nil {
			failed++
			e.logger.Warn("category match failed, scoring 0",
				zap.String(logger.FieldCategory, res.category.String()),
				zap.Error(res.err),
			)
			continue
		}
		report[res.category] = res.score
	}

	e.logger.Info("match finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("failed_categories", failed),
	)

	return report, nil
}

func (e *Engine) runTask(ctx context.Context, profile similarity.Profile, candidate, requirement string) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, fmt.Errorf("matcher panicked: %v", r)
		}
	}()

	m := e.newMatcher(profile)
	if inputErr := m.SetInputs(candidate, requirement); inputErr != nil {
		return 0, fmt.Errorf("set inputs: %w", inputErr)
	}
	score, err = m.MakeMatch(ctx)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) {
		return 0, errors.New("matcher returned NaN")
	}
	return min(1, max(0, score)), nil
}
