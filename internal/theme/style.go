package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// importPattern matches @import "a.css", @import 'a.css' and
// @import url("a.css"), with or without the closing semicolon.
var importPattern = regexp.MustCompile(`@import\s+(?:url\(\s*)?["']([^"']+)["']\s*\)?\s*;?`)

// maxImportDepth bounds nested imports.
const maxImportDepth = 8

// Stylesheet is a stylesheet read from disk with its imports inlined.
type Stylesheet struct {
	Path    string
	CSS     string
	ModTime time.Time
}

// ReadStylesheet reads the stylesheet at path.
func ReadStylesheet(path string) (*Stylesheet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Stylesheet{
		Path:    path,
		CSS:     InlineImports(string(data), filepath.Dir(path)),
		ModTime: info.ModTime(),
	}, nil
}

// InlineImports replaces each @import with the contents of the imported file.
// Relative names resolve against dir. A name with no file on disk falls back
// to the bundled stylesheet of the same name. Imports that fail, repeat or nest
// too deep become comments.
func InlineImports(css, dir string) string {
	r := importResolver{seen: make(map[string]bool)}
	return r.inline(css, dir, 0)
}

type importResolver struct {
	seen map[string]bool
}

func (r importResolver) inline(css, dir string, depth int) string {
	matches := importPattern.FindAllStringSubmatchIndex(css, -1)
	if matches == nil {
		return css
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(css[last:m[0]])
		b.WriteString(r.resolve(css[m[2]:m[3]], dir, depth))
		last = m[1]
	}
	b.WriteString(css[last:])
	return b.String()
}

func (r importResolver) resolve(name, dir string, depth int) string {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}

	if r.seen[path] || depth >= maxImportDepth {
		return fmt.Sprintf("/* @import %s skipped */", name)
	}
	r.seen[path] = true

	data, err := os.ReadFile(path)
	if err == nil {
		return fmt.Sprintf("/* @import %s */\n%s", name, r.inline(string(data), filepath.Dir(path), depth+1))
	}
	if css, ok := Bundled(filepath.Base(name)); ok {
		return fmt.Sprintf("/* @import %s (bundled) */\n%s", name, css)
	}
	return fmt.Sprintf("/* @import %s failed: %v */", name, err)
}

// UserStyle follows the user stylesheet on disk and reports when the CSS to
// apply changes. It does not touch GTK.
type UserStyle struct {
	path    string
	current *Stylesheet
}

// NewUserStyle creates a UserStyle for the file at path, which need not exist.
func NewUserStyle(path string) *UserStyle {
	return &UserStyle{path: path}
}

// Current returns the stylesheet read last, or nil if there is none.
func (u *UserStyle) Current() *Stylesheet {
	return u.current
}

// Refresh re-reads the file and returns the CSS to apply and whether it
// differs from the previous result. A missing file yields empty CSS, which
// clears earlier user rules. On a read error the previous stylesheet is kept.
func (u *UserStyle) Refresh() (string, bool, error) {
	sheet, err := ReadStylesheet(u.path)
	if errors.Is(err, os.ErrNotExist) {
		changed := u.current != nil
		u.current = nil
		return "", changed, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read stylesheet: %w", err)
	}

	changed := u.current == nil || u.current.CSS != sheet.CSS
	u.current = sheet
	return sheet.CSS, changed, nil
}
