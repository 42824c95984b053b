// Package textnorm prepares free-text category values before they reach a
// matcher: NFC composition, a hard length cap, HTML escaping and trimming.
package textnorm

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrTooLong is returned when an input exceeds the allowed length.
var ErrTooLong = errors.New("input exceeds maximum length")

const separator = ","

// Normalize validates and sanitizes text. Inputs longer than maxLength runes
// are rejected rather than cut. A non-positive maxLength disables the cap.
func Normalize(text string, maxLength int) (string, error) {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	text = norm.NFC.String(text)

	if maxLength > 0 {
		if n := utf8.RuneCountInString(text); n > maxLength {
			return "", fmt.Errorf("%w of %d characters (got %d)", ErrTooLong, maxLength, n)
		}
	}

	return strings.TrimSpace(html.EscapeString(text)), nil
}

// NormalizeBytes decodes b as UTF-8, replacing invalid sequences, and
// normalizes the result.
func NormalizeBytes(b []byte, maxLength int) (string, error) {
	return Normalize(string(b), maxLength)
}

// Split breaks a comma-delimited value into trimmed, non-empty items,
// preserving their order.
func Split(text string) []string {
	parts := strings.Split(text, separator)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// NormalizeList normalizes text and splits it into items.
func NormalizeList(text string, maxLength int) ([]string, error) {
	normalized, err := Normalize(text, maxLength)
	if err != nil {
		return nil, err
	}
	return Split(normalized), nil
}
