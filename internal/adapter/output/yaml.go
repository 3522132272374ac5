package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ocf/paper-applet/internal/model"
)

// YAMLFormatter formats the state as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes the state as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, state model.State) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(state); err != nil {
		return err
	}
	return encoder.Close()
}
