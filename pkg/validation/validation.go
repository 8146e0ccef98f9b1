package validation

import "strings"

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// ValidateTitle checks the title constraints: required, at most 100 characters.
func ValidateTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return len([]rune(title)) <= MaxTitleLength
}

// ValidateDescription checks the description constraint: at most 500 characters.
func ValidateDescription(description string) bool {
	return len([]rune(description)) <= MaxDescriptionLength
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
