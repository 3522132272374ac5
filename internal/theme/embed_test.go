package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCSS_LabelSize(t *testing.T) {
	css := DefaultCSS()
	require.NotEmpty(t, css)

	assert.Contains(t, css, ".paper-label {\n  font-size: 18px;\n  padding: 0 12px;\n}")
}

func TestDefaultCSS_StateClasses(t *testing.T) {
	css := DefaultCSS()

	// Chip.Render toggles these on the button
	for _, selector := range []string{
		".paper-chip.loading .paper-label",
		".paper-chip.error .paper-label",
		"window.paper-applet",
	} {
		assert.Contains(t, css, selector)
	}
}

func TestBundled(t *testing.T) {
	css, ok := Bundled(DefaultName)
	assert.True(t, ok)
	assert.Equal(t, DefaultCSS(), css)

	_, ok = Bundled("catppuccin.css")
	assert.False(t, ok)

	_, ok = Bundled("../embed.go")
	assert.False(t, ok)
}
