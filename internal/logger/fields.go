package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCategory is the structured log field key for the match category.
	FieldCategory = "category"
	// FieldProvider is the structured log field key for the embedding provider.
	FieldProvider = "embedding_provider"
	// FieldModelA and FieldModelB carry the two embedding model identifiers.
	FieldModelA = "model_a"
	FieldModelB = "model_b"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when
// logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// EmbedderFields describes the embedding provider and its two models.
func EmbedderFields(provider, modelA, modelB string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModelA, Value: modelA},
		StringField{Key: FieldModelB, Value: modelB},
	)
}

// WithCategory scopes logger to one match category.
func WithCategory(logger *zap.Logger, category string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldCategory, Value: category})...)
}
