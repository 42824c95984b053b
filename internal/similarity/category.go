// Package similarity scores how well the items of one category on the
// candidate side cover the items on the requirement side.
package similarity

import (
	"fmt"
	"strings"
)

// Category names one of the fixed attribute types scored by the engine.
type Category string

const (
	Education      Category = "EDUCATION"
	Experience     Category = "EXPERIENCE"
	TechnicalSkill Category = "TECHNICAL_SKILL"
	SoftSkill      Category = "SOFT_SKILL"
	Tool           Category = "TOOL"
	Certification  Category = "CERTIFICATION"
	Designation    Category = "DESIGNATION"
)

var categories = []Category{
	Education,
	Experience,
	TechnicalSkill,
	SoftSkill,
	Tool,
	Certification,
	Designation,
}

// Categories returns every category in report order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts a category name in any case, with "-", "_" or spaces
// between words.
func ParseCategory(s string) (Category, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	for _, c := range categories {
		if string(c) == key {
			return c, nil
		}
	}

	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) String() string {
	return string(c)
}
