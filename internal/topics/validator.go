// Package topics implements the topic generation pipeline: candidate title
// generation, keyword validation, duplicate detection, and the batch
// orchestrator that ties them together.
package topics

import (
	"unicode/utf8"

	"copydesk/internal/category"
)

// Validator checks candidate titles against length bounds, the global
// forbidden-keyword denylist, and the category's required-keyword list.
// It is pure and deterministic.
type Validator struct {
	minRunes int
	maxRunes int
}

// NewValidator creates a validator with the given rune-length bounds.
func NewValidator(minRunes, maxRunes int) *Validator {
	if minRunes <= 0 {
		minRunes = 10
	}
	if maxRunes <= 0 {
		maxRunes = 100
	}
	return &Validator{minRunes: minRunes, maxRunes: maxRunes}
}

// Validate reports whether title is acceptable for the category. Length is
// measured in runes so Korean titles are not penalized for byte width.
func (v *Validator) Validate(title string, cat category.Category) bool {
	n := utf8.RuneCountInString(title)
	if n < v.minRunes || n > v.maxRunes {
		return false
	}
	if category.ContainsForbidden(title) != "" {
		return false
	}
	return cat.ContainsRequired(title)
}
