package numeralizer

import (
	"errors"
	"math"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []float64
	}{
		{
			name:   "single value",
			input:  "3 years of backend development",
			expect: []float64{3},
		},
		{
			name:   "plus suffix adds a half",
			input:  "3+ years",
			expect: []float64{3.5},
		},
		{
			name:   "decimal with short unit",
			input:  "Worked for 6.5+ yrs as a cloud engineer",
			expect: []float64{7},
		},
		{
			name:   "range contributes its mean and both bounds",
			input:  "1-3 years",
			expect: []float64{2, 1, 3},
		},
		{
			name:   "no numbers defaults to zero",
			input:  "extensive experience",
			expect: []float64{0},
		},
		{
			name:   "unit is case insensitive",
			input:  "2 YEARS, 4 Yrs",
			expect: []float64{2, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.input)
			if len(got) != len(tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
			for i := range got {
				if math.Abs(got[i]-tt.expect[i]) > 1e-9 {
					t.Fatalf("value %d: expected %v, got %v", i, tt.expect[i], got[i])
				}
			}
		})
	}
}

func TestReduce(t *testing.T) {
	t.Parallel()

	values := []float64{2, 1, 3}
	tests := []struct {
		mode   Mode
		expect float64
	}{
		{ModeMin, 1},
		{ModeMax, 3},
		{ModeAvg, 2},
		{ModeSum, 6},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			got, err := Reduce(values, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestReduceInvalidMode(t *testing.T) {
	if _, err := Reduce([]float64{1}, Mode("median")); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestNewRejectsInvalidMode(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode for empty mode, got %v", err)
	}
	if _, err := ParseMode("MEAN"); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if mode, err := ParseMode(" Sum "); err != nil || mode != ModeSum {
		t.Fatalf("expected sum mode, got %q (%v)", mode, err)
	}
}

func TestYearsCandidateAndRequirement(t *testing.T) {
	candidate, err := New(ModeSum)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requirement, err := New(ModeAvg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := candidate.Years("2 years at Acme, 3 years at Initech")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected 5 total years, got %v", got)
	}

	got, err = requirement.Years("2 years")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 years, got %v", got)
	}

	// Calls do not accumulate state.
	got, _ = requirement.Years("2 years")
	if got != 2 {
		t.Fatalf("expected repeated call to return 2, got %v", got)
	}
}
