package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIconsAreUnstyledWhenNotColorized(t *testing.T) {
	assert.Equal(t, "✅", SuccessIcon(false))
	assert.Equal(t, "❌", ErrorIcon(false))
	assert.Equal(t, "🛈", InfoIcon(false))
}

func TestIconsAreStyledWhenColorized(t *testing.T) {
	assert.Equal(t, QuestionStyle.Render("✅"), SuccessIcon(true))
	assert.Equal(t, ErrorStyle.Render("❌"), ErrorIcon(true))
	assert.Equal(t, WarningStyle.Render("🛈"), InfoIcon(true))
}
