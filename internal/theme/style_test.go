package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSS(t *testing.T, path, css string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(css), 0644))
}

func TestUserStyle_OverridesBundledLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	writeCSS(t, path, `@import "default.css";
.paper-label { font-size: 24px; padding: 0 6px; }`)

	css, changed, err := NewUserStyle(path).Refresh()
	require.NoError(t, err)
	assert.True(t, changed)

	// Later rules win, so the user's sizes must follow the bundled ones
	bundled := strings.Index(css, "font-size: 18px")
	user := strings.Index(css, "font-size: 24px")
	require.NotEqual(t, -1, bundled, "default.css is inlined")
	require.NotEqual(t, -1, user)
	assert.Less(t, bundled, user)
	assert.Greater(t, strings.Index(css, "padding: 0 6px"), strings.Index(css, "padding: 0 12px"))
	assert.NotContains(t, css, `@import "`)
}

func TestInlineImports_DefaultResolvesToBundled(t *testing.T) {
	css := InlineImports(`@import url("default.css");`, t.TempDir())

	assert.Contains(t, css, "(bundled)")
	assert.Contains(t, css, DefaultCSS())
}

func TestInlineImports_LocalFileShadowsBundled(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, filepath.Join(dir, "default.css"), ".paper-label { color: red; }")

	css := InlineImports(`@import 'default.css';`, dir)

	assert.Contains(t, css, "color: red")
	assert.NotContains(t, css, "font-size: 18px")
}

func TestInlineImports_Nested(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "parts"), 0755))
	writeCSS(t, filepath.Join(dir, "parts", "colors.css"), `@import "error.css";
.paper-chip { background: black; }`)
	writeCSS(t, filepath.Join(dir, "parts", "error.css"), ".paper-chip.error .paper-label { color: orange; }")

	css := InlineImports(`@import "parts/colors.css";`, dir)

	// error.css resolves next to colors.css, not next to style.css
	assert.Contains(t, css, "background: black")
	assert.Contains(t, css, "color: orange")
}

func TestInlineImports_Cycle(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, filepath.Join(dir, "a.css"), `@import "b.css"; .a {}`)
	writeCSS(t, filepath.Join(dir, "b.css"), `@import "a.css"; .b {}`)

	css := InlineImports(`@import "a.css";`, dir)

	assert.Contains(t, css, ".a {}")
	assert.Contains(t, css, ".b {}")
	assert.Contains(t, css, "/* @import a.css skipped */")
}

func TestInlineImports_Missing(t *testing.T) {
	css := InlineImports(`@import "nope.css"; .paper-label { color: blue; }`, t.TempDir())

	assert.True(t, strings.HasPrefix(css, "/* @import nope.css failed:"))
	assert.Contains(t, css, ".paper-label { color: blue; }")
}

func TestUserStyle_MissingFile(t *testing.T) {
	style := NewUserStyle(filepath.Join(t.TempDir(), "style.css"))

	css, changed, err := style.Refresh()
	require.NoError(t, err)
	assert.Empty(t, css)
	assert.False(t, changed, "nothing to clear")
	assert.Nil(t, style.Current())
}

func TestUserStyle_RemovedFileClearsRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	writeCSS(t, path, ".paper-label { font-size: 30px; }")
	style := NewUserStyle(path)

	_, changed, err := style.Refresh()
	require.NoError(t, err)
	require.True(t, changed)
	require.NotNil(t, style.Current())

	require.NoError(t, os.Remove(path))
	css, changed, err := style.Refresh()
	require.NoError(t, err)
	assert.Empty(t, css)
	assert.True(t, changed)
	assert.Nil(t, style.Current())

	_, changed, err = style.Refresh()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUserStyle_UnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	writeCSS(t, path, ".paper-label { font-size: 30px; }")
	style := NewUserStyle(path)

	_, changed, _ := style.Refresh()
	require.True(t, changed)

	writeCSS(t, path, ".paper-label { font-size: 30px; }")
	_, changed, err := style.Refresh()
	require.NoError(t, err)
	assert.False(t, changed)

	writeCSS(t, path, ".paper-label { font-size: 14px; }")
	css, changed, err := style.Refresh()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, css, "14px")
}

func TestUserStyle_ReadErrorKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	writeCSS(t, path, ".paper-label { font-size: 30px; }")
	style := NewUserStyle(path)
	_, _, err := style.Refresh()
	require.NoError(t, err)
	previous := style.Current()

	// A directory where the file should be cannot be read
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))

	_, changed, err := style.Refresh()
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Same(t, previous, style.Current())
}
