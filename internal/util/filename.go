package util

import (
	"strings"
	"time"
	"unicode"
)

const maxSlugWords = 6

// ResponseFileName returns the markdown file name a saved response is
// written to, e.g. 2025-03-07-a-man-stole-my-wallet-1a2b3c4d.md.
func ResponseFileName(query, runID string, now time.Time) string {
	parts := []string{now.Format("2006-01-02")}
	if slug := Slug(query, maxSlugWords); slug != "" {
		parts = append(parts, slug)
	}
	if id := ShortID(runID); id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, "-") + ".md"
}

// ShortID returns the first eight characters of a run ID, without hyphens.
func ShortID(runID string) string {
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Slug converts s to kebab-case and keeps at most maxWords words.
func Slug(s string, maxWords int) string {
	words := strings.Split(toKebabCase(s), "-")
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, "-")
}

// toKebabCase converts a string to kebab-case.
// It lowercases the string, replaces spaces and underscores with hyphens,
// removes non-alphanumeric characters (except hyphens), collapses multiple
// consecutive hyphens, and trims leading/trailing hyphens.
func toKebabCase(s string) string {
	var result strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(unicode.ToLower(r))
		} else if unicode.IsSpace(r) || r == '_' || r == '-' {
			result.WriteRune('-')
		}
	}

	str := result.String()
	for strings.Contains(str, "--") {
		str = strings.ReplaceAll(str, "--", "-")
	}

	return strings.Trim(str, "-")
}
