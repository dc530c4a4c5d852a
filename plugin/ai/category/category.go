// Package category assigns one of a fixed set of semantic labels to calendar events.
//
// Classification runs a naive Bayes model built from an embedded keyword corpus and
// falls back to whole-word keyword scoring when the model is not confident enough.
package category

import "strings"

// Category is one of the eight event labels.
type Category string

const (
	Work     Category = "work"
	Study    Category = "study"
	Personal Category = "personal"
	Leisure  Category = "leisure"
	Fitness  Category = "fitness"
	Health   Category = "health"
	Travel   Category = "travel"
	Rest     Category = "rest"
)

// Default is returned whenever no better label can be decided.
const Default = Personal

var all = []Category{Work, Study, Personal, Leisure, Fitness, Health, Travel, Rest}

// All returns the categories in their canonical order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// IsValid reports whether c is one of the eight categories.
func (c Category) IsValid() bool {
	for _, v := range all {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Parse normalizes s and reports whether it names a category.
func Parse(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}
