// Package input provides the source adapter that produces panel text.
package input

import (
	"context"
	"os/exec"

	"github.com/ocf/paper-applet/internal/model"
)

// Source produces one reading per call.
type Source interface {
	// Name returns the adapter identifier (e.g., "paper-genmon").
	Name() string

	// Read runs the source once. It never fails: failures are folded into
	// the returned reading as model.ErrorText with Err set.
	Read(ctx context.Context) model.Reading
}

// Available reports whether the paper-genmon executable can be found on PATH.
func Available() bool {
	_, err := exec.LookPath(Command)
	return err == nil
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Source + ": " + e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
