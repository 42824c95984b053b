package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-matchmaker/internal/embedding"
	"github.com/spigell/hh-matchmaker/internal/utils"
)

const (
	// DefaultModelA and DefaultModelB are the two independent models used
	// when the configuration leaves them empty.
	DefaultModelA = "text-embedding-004"
	DefaultModelB = "gemini-embedding-001"

	taskType       = "SEMANTIC_SIMILARITY"
	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

var (
	wait = utils.WaitFor

	retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)
)

type embedService interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder produces vectors with one Gemini embedding model.
type Embedder struct {
	models   embedService
	model    string
	attempts int
	logger   *zap.Logger
}

// NewClient creates a GenAI client for the Gemini API backend. One client
// can serve several embedders.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

// NewEmbedder returns an embedder for model on top of client. attempts is
// the total number of tries per text; values below 1 mean a single try.
func NewEmbedder(client *genai.Client, model string, attempts int, logger *zap.Logger) (*Embedder, error) {
	if client == nil || client.Models == nil {
		return nil, errors.New("gemini client is not initialized")
	}
	return newEmbedder(client.Models, model, attempts, logger), nil
}

func newEmbedder(models embedService, model string, attempts int, logger *zap.Logger) *Embedder {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		models:   models,
		model:    strings.TrimSpace(model),
		attempts: attempts,
		logger:   logger,
	}
}

// Encode embeds text, retrying temporary API failures.
func (e *Embedder) Encode(ctx context.Context, text string) (embedding.Vector, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
			TaskType: taskType,
		})
		if err == nil {
			return toVector(resp)
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.attempts {
			break
		}

		e.logger.Debug("retrying gemini embed request",
			zap.String("model", e.model),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embed content with %s: %w", e.model, lastErr)
}

// Model reports the model name used for requests.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func toVector(resp *genai.EmbedContentResponse) (embedding.Vector, error) {
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embeddings")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("gemini api returned an empty embedding")
	}

	vec := make(embedding.Vector, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	return vec, nil
}

// retryDelay decides whether err is worth another attempt and how long to
// wait first. Quota errors asking for a longer pause than maxRetryDelay are
// not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if match := retryAfterPattern.FindStringSubmatch(apiErr.Message); match != nil {
			seconds, convErr := strconv.ParseFloat(match[1], 64)
			if convErr == nil {
				delay := time.Duration(seconds * float64(time.Second))
				return delay, delay <= maxRetryDelay
			}
		}
	case apiErr.Code >= http.StatusInternalServerError:
	default:
		return 0, false
	}

	delay := baseRetryDelay << (attempt - 1)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay, true
}
