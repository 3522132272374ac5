package output

import (
	"fmt"
	"io"
	"text/template"

	"github.com/ocf/paper-applet/internal/model"
)

// PlainFormatter formats the state as plain text.
type PlainFormatter struct {
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
// Without a template only the panel text is printed.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}

	return f, nil
}

// Format writes the state as plain text followed by a newline.
func (f *PlainFormatter) Format(w io.Writer, state model.State) error {
	if f.template == nil {
		_, err := fmt.Fprintln(w, state.Text)
		return err
	}

	data := templateData{
		State:        state,
		RelativeTime: state.RelativeTime(),
	}
	if err := f.template.Execute(w, data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// templateData is the data passed to custom templates.
type templateData struct {
	model.State
	RelativeTime string
}
