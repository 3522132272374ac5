package output

import (
	"encoding/json"
	"io"

	"github.com/ocf/paper-applet/internal/model"
)

// JSONFormatter formats the state as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the state as an indented JSON object.
func (f *JSONFormatter) Format(w io.Writer, state model.State) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(state)
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

// WaybarFormatter formats the state for a Waybar custom module:
//
//	"custom/paper": {
//	  "exec": "paper-applet status",
//	  "interval": 5,
//	  "return-type": "json"
//	}
type WaybarFormatter struct {
	opts FormatterOptions
}

// NewWaybarFormatter creates a new Waybar formatter.
func NewWaybarFormatter(opts FormatterOptions) *WaybarFormatter {
	return &WaybarFormatter{opts: opts}
}

// Format writes the state as a single-line Waybar JSON object.
func (f *WaybarFormatter) Format(w io.Writer, state model.State) error {
	return json.NewEncoder(w).Encode(NewWaybarStatus(f.opts.Title, state))
}

// NewWaybarStatus builds the Waybar payload for state.
func NewWaybarStatus(title string, state model.State) WaybarStatus {
	class := "ok"
	switch {
	case state.Loading():
		class = "loading"
	case state.Failed:
		class = "error"
	}

	return WaybarStatus{
		Text:    state.Text,
		Alt:     class,
		Tooltip: Tooltip(title, state),
		Class:   class,
	}
}
