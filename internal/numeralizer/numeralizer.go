// Package numeralizer extracts year quantities from experience descriptions
// and reduces them to a single figure.
package numeralizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidMode is returned for an unknown aggregation mode.
var ErrInvalidMode = errors.New("invalid mode: use min, max, avg or sum")

// Mode selects how extracted values are reduced.
type Mode string

const (
	ModeMin Mode = "min"
	ModeMax Mode = "max"
	ModeAvg Mode = "avg"
	ModeSum Mode = "sum"
)

// plusBonus is added to a value followed by "+", so "3+ years" counts as 3.5.
const plusBonus = 0.5

var (
	rangePattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*(?:years|yrs|year)?`)
	singlePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)(\+)?\s*(?:years|yrs|year)?`)
)

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return mode, nil
}

func (m Mode) valid() bool {
	switch m {
	case ModeMin, ModeMax, ModeAvg, ModeSum:
		return true
	default:
		return false
	}
}

// Numeralizer reduces the numbers found in a text with a fixed mode.
type Numeralizer struct {
	mode Mode
}

// New returns a Numeralizer for mode.
func New(mode Mode) (*Numeralizer, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return &Numeralizer{mode: mode}, nil
}

// Mode reports the configured aggregation mode.
func (n *Numeralizer) Mode() Mode {
	return n.mode
}

// Years extracts every quantity from text and reduces them.
func (n *Numeralizer) Years(text string) (float64, error) {
	return Reduce(Extract(text), n.mode)
}

// Extract collects range midpoints followed by single values. Both rules run
// over the whole text, so the bounds of a range are also counted as singles.
// The result is never empty: a text without numbers yields [0].
func Extract(text string) []float64 {
	var values []float64

	for _, match := range rangePattern.FindAllStringSubmatch(text, -1) {
		low, errLow := strconv.ParseFloat(match[1], 64)
		high, errHigh := strconv.ParseFloat(match[2], 64)
		if errLow != nil || errHigh != nil {
			continue
		}
		values = append(values, (low+high)/2)
	}

	for _, match := range singlePattern.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		if match[2] != "" {
			value += plusBonus
		}
		values = append(values, value)
	}

	if len(values) == 0 {
		values = append(values, 0)
	}

	return values
}

// Reduce aggregates values with mode. An empty slice reduces to 0.
func Reduce(values []float64, mode Mode) (float64, error) {
	if !mode.valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if len(values) == 0 {
		return 0, nil
	}

	switch mode {
	case ModeMin:
		result := values[0]
		for _, v := range values[1:] {
			result = min(result, v)
		}
		return result, nil
	case ModeMax:
		result := values[0]
		for _, v := range values[1:] {
			result = max(result, v)
		}
		return result, nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	if mode == ModeAvg {
		return sum / float64(len(values)), nil
	}
	return sum, nil
}
