package engine

import (
	"encoding/json"
	"math"

	"github.com/spigell/hh-matchmaker/internal/similarity"
)

// Report holds one score in [0, 1] per category. It always carries every
// category.
type Report map[similarity.Category]float64

// NewReport returns a report with every category scored 0.
func NewReport() Report {
	r := make(Report, len(similarity.Categories()))
	for _, c := range similarity.Categories() {
		r[c] = 0
	}
	return r
}

// Categories returns the report keys in canonical order.
func (r Report) Categories() []similarity.Category {
	return similarity.Categories()
}

// Rounded returns a copy with every score rounded to precision decimals.
func (r Report) Rounded(precision int) Report {
	if precision < 0 {
		precision = 0
	}
	pow := math.Pow(10, float64(precision))

	out := make(Report, len(r))
	for c, v := range r {
		out[c] = math.Round(v*pow) / pow
	}
	return out
}

func (r Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(r))
	for c, v := range r {
		out[string(c)] = v
	}
	return json.Marshal(out)
}
