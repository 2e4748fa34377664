package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"symptocare-backend/domain/config"
	pkgerrors "symptocare-backend/pkg/errors"
)

// Reflection is the free-text note attached to a mood entry
type Reflection struct {
	text string
}

// NewReflection creates a reflection with validation using default configuration
func NewReflection(text string) (Reflection, error) {
	return NewReflectionWithConfig(text, config.DefaultAnalysisConfig())
}

// NewReflectionWithConfig trims and length-checks the text
func NewReflectionWithConfig(text string, cfg *config.AnalysisConfig) (Reflection, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	text = strings.TrimSpace(text)
	if cfg.MaxReflectionLength > 0 && utf8.RuneCountInString(text) > cfg.MaxReflectionLength {
		return Reflection{}, pkgerrors.NewValidationError(
			fmt.Sprintf("reflection exceeds maximum length of %d characters", cfg.MaxReflectionLength))
	}

	return Reflection{text: text}, nil
}

// String returns the reflection text
func (r Reflection) String() string {
	return r.text
}

// IsEmpty checks if the reflection is empty
func (r Reflection) IsEmpty() bool {
	return r.text == ""
}

// WordCount returns the approximate word count
func (r Reflection) WordCount() int {
	return len(strings.Fields(r.text))
}

// Truncate returns the first maxRunes runes flattened onto one line
func (r Reflection) Truncate(maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	runes := []rune(r.text)
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return strings.TrimSpace(strings.ReplaceAll(string(runes), "\n", " "))
}

// Excerpt is Truncate with an ellipsis appended when the text was cut
func (r Reflection) Excerpt(maxRunes int) string {
	out := r.Truncate(maxRunes)
	if utf8.RuneCountInString(r.text) > maxRunes && maxRunes > 0 {
		out += "…"
	}
	return out
}

// ReflectionFromStorage wraps stored text without re-validating it
func ReflectionFromStorage(text string) Reflection {
	return Reflection{text: text}
}
