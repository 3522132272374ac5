// Package model defines the core data structures for paper-applet.
package model

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
)

// Panel texts that do not come from the command itself.
const (
	// LoadingText is shown until the first run completes.
	LoadingText = "Loading page count..."
	// ErrorText replaces the output of any failed run.
	ErrorText = "Error"
)

// Reading is the outcome of a single paper-genmon run.
type Reading struct {
	RunID    string
	Text     string
	Err      error
	At       time.Time
	Duration time.Duration
}

// NewRunID returns a fresh ULID used to correlate a run across log lines.
func NewRunID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// Failed reports whether the run produced the fallback text.
func (r Reading) Failed() bool {
	return r.Err != nil
}

// State is everything a frontend needs to draw the applet.
// Text is the only field shown on the panel; the rest feeds tooltips and status output.
type State struct {
	Text      string    `json:"text" yaml:"text"`
	Failed    bool      `json:"failed" yaml:"failed"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
	RunID     string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// InitialState returns the state shown before the first run completes.
func InitialState() State {
	return State{Text: LoadingText}
}

// Apply returns the state after r replaced the previous text.
func (s State) Apply(r Reading) State {
	return State{
		Text:      r.Text,
		Failed:    r.Failed(),
		UpdatedAt: r.At,
		RunID:     r.RunID,
	}
}

// Loading reports whether no run has completed yet.
func (s State) Loading() bool {
	return s.UpdatedAt.IsZero()
}

// RelativeTime returns a human-readable age of the text, e.g. "5 seconds ago".
func (s State) RelativeTime() string {
	if s.Loading() {
		return "never"
	}
	return humanize.Time(s.UpdatedAt)
}
