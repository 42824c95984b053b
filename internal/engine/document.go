package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/hh-matchmaker/internal/similarity"
)

// Document maps each category to a comma-separated list of items.
type Document map[similarity.Category]string

// Get returns the value of c, or "" when absent.
func (d Document) Get(c similarity.Category) string {
	if d == nil {
		return ""
	}
	return d[c]
}

// DecodeDocument reads a loosely typed document, as produced by JSON or YAML
// decoders. Keys are matched with similarity.ParseCategory and unknown keys
// are ignored; two keys naming the same category are an error. Values may be
// strings or lists of strings; lists are joined with ", ".
func DecodeDocument(raw map[string]any) (Document, error) {
	if raw == nil {
		return nil, nil
	}

	known := make(map[string]any, len(raw))
	for key, value := range raw {
		category, err := similarity.ParseCategory(key)
		if err != nil {
			continue
		}
		if _, dup := known[string(category)]; dup {
			return nil, fmt.Errorf("decode document: category %s is given more than once", category)
		}
		known[string(category)] = value
	}

	var values map[string]string
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: joinListHook,
		Result:     &values,
	})
	if err != nil {
		return nil, fmt.Errorf("create document decoder: %w", err)
	}

	if err := decoder.Decode(known); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := make(Document, len(values))
	for key, value := range values {
		doc[similarity.Category(key)] = value
	}
	return doc, nil
}

// joinListHook turns a list of strings into the comma-separated form the
// matchers consume. Anything other than a string, a list of strings or nil
// is rejected.
func joinListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	switch v := data.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []string:
		return strings.Join(v, ", "), nil
	case []any:
		items := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected string, got %T", i, item)
			}
			items = append(items, s)
		}
		return strings.Join(items, ", "), nil
	default:
		return nil, fmt.Errorf("expected string or list of strings, got %s", from)
	}
}
