// Package output provides output formatters for the applet state.
package output

import (
	"fmt"
	"io"

	"github.com/ocf/paper-applet/internal/model"
)

// Formatter formats the applet state for output.
type Formatter interface {
	// Format writes the formatted state to the writer.
	Format(w io.Writer, state model.State) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatWaybar FormatType = "waybar"
	FormatJSON   FormatType = "json"
	FormatYAML   FormatType = "yaml"
	FormatPlain  FormatType = "plain"
)

// ValidFormats returns all supported format types.
func ValidFormats() []FormatType {
	return []FormatType{FormatWaybar, FormatJSON, FormatYAML, FormatPlain}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // Custom template for plain format, e.g. "{{.Text}}"
	Title    string // Tooltip heading for the waybar format
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatWaybar:
		return NewWaybarFormatter(opts), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatPlain:
		return NewPlainFormatter(opts)
	default:
		return nil, fmt.Errorf("unknown format %q, must be one of: %v", format, ValidFormats())
	}
}

// Tooltip returns the multi-line tooltip describing state.
// Used as the waybar tooltip.
func Tooltip(title string, state model.State) string {
	if state.Loading() {
		return title + "\nwaiting for first reading"
	}
	if state.Failed {
		return fmt.Sprintf("%s\nlast run failed %s", title, state.RelativeTime())
	}
	return fmt.Sprintf("%s\n%s\nupdated %s", title, state.Text, state.RelativeTime())
}
