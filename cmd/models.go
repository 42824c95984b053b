package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/hh-matchmaker/internal/embedding"
	"github.com/spigell/hh-matchmaker/internal/embedding/gemini"
	"github.com/spigell/hh-matchmaker/internal/logger"
	"github.com/spigell/hh-matchmaker/internal/secrets"
	"github.com/spigell/hh-matchmaker/internal/similarity"

	"go.uber.org/zap"
)

const (
	providerGemini = "gemini"
	providerHash   = "hash"
)

// models is the embedding setup shared by every category for one run.
type models struct {
	similarity.Models
	provider string
	modelA   string
	modelB   string
	caches   []*embedding.Cache
}

func (m *models) logStats(log *zap.Logger) {
	for i, c := range m.caches {
		log.Debug("embedding cache stats",
			zap.Int("model", i),
			zap.Int("entries", c.Size()),
			zap.Float64("hit_rate", c.HitRate()),
		)
	}
}

func newModels(ctx context.Context, cfg *EmbeddingConfig, log *zap.Logger) (*models, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	var apiKey string
	if provider == "" || provider == providerGemini {
		key, err := loadGeminiKey(cfg.Gemini)
		switch {
		case err == nil:
			apiKey = key
			provider = providerGemini
		case provider == providerGemini:
			return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		default:
			log.Warn("gemini api key is not configured, falling back to offline hash embeddings", zap.Error(err))
			provider = providerHash
		}
	}

	var m *models
	switch provider {
	case providerGemini:
		built, err := newGeminiModels(ctx, apiKey, cfg.Gemini, log)
		if err != nil {
			return nil, err
		}
		m = built
	case providerHash:
		m = &models{
			Models: similarity.Models{
				A: embedding.NewHashEmbedder(cfg.Hash.Dimensions, "model-a"),
				B: embedding.NewHashEmbedder(cfg.Hash.Dimensions, "model-b"),
			},
			modelA: "hash-a",
			modelB: "hash-b",
		}
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	m.provider = provider

	// Concurrency bounds calls per model, the cache sits in front of it.
	m.A = embedding.Limit(m.A, cfg.Concurrency)
	m.B = embedding.Limit(m.B, cfg.Concurrency)

	if cfg.Cache {
		a, b := embedding.NewCache(m.A), embedding.NewCache(m.B)
		m.A, m.B = a, b
		m.caches = []*embedding.Cache{a, b}
	}

	log.Info("embedding models ready", logger.EmbedderFields(m.provider, m.modelA, m.modelB)...)

	return m, nil
}

func loadGeminiKey(cfg *GeminiConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
}

func newGeminiModels(ctx context.Context, apiKey string, cfg *GeminiConfig, log *zap.Logger) (*models, error) {
	modelA := strings.TrimSpace(cfg.ModelA)
	if modelA == "" {
		modelA = gemini.DefaultModelA
	}
	modelB := strings.TrimSpace(cfg.ModelB)
	if modelB == "" {
		modelB = gemini.DefaultModelB
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	attempts := cfg.MaxRetries + 1
	embedLogger := log.With(zap.Int("embed_retry_attempts", attempts))

	a, err := gemini.NewEmbedder(client, modelA, attempts, embedLogger.With(zap.String(logger.FieldModelA, modelA)))
	if err != nil {
		return nil, err
	}
	b, err := gemini.NewEmbedder(client, modelB, attempts, embedLogger.With(zap.String(logger.FieldModelB, modelB)))
	if err != nil {
		return nil, err
	}

	return &models{
		Models: similarity.Models{A: a, B: b},
		modelA: modelA,
		modelB: modelB,
	}, nil
}
