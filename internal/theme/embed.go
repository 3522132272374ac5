package theme

import "embed"

//go:embed themes/*.css
var bundled embed.FS

// DefaultName is the bundled stylesheet applied beneath the user's. A user
// style.css can pull it in with @import "default.css".
const DefaultName = "default.css"

// Bundled returns the bundled stylesheet with the given file name.
func Bundled(name string) (string, bool) {
	data, err := bundled.ReadFile("themes/" + name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// DefaultCSS returns the bundled default stylesheet.
func DefaultCSS() string {
	css, _ := Bundled(DefaultName)
	return css
}
