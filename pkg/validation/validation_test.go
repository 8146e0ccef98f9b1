package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	assert.True(t, ValidateTitle("Holiday in Lisbon"))
	assert.True(t, ValidateTitle(strings.Repeat("a", MaxTitleLength)))
	assert.False(t, ValidateTitle(strings.Repeat("a", MaxTitleLength+1)))
	assert.False(t, ValidateTitle(""))
	assert.False(t, ValidateTitle("   "))
}

func TestValidateDescription(t *testing.T) {
	assert.True(t, ValidateDescription(""))
	assert.True(t, ValidateDescription(strings.Repeat("b", MaxDescriptionLength)))
	assert.False(t, ValidateDescription(strings.Repeat("b", MaxDescriptionLength+1)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
}
