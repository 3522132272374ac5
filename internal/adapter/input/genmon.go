package input

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ocf/paper-applet/internal/model"
)

// Command is the executable polled for the panel text. It is run without arguments.
const Command = "paper-genmon"

// waitDelay bounds how long Read waits for stdout to close after the process
// was killed or exited, in case a grandchild inherited the pipe.
const waitDelay = 2 * time.Second

// GenmonAdapter runs paper-genmon and turns its stdout into a reading.
type GenmonAdapter struct {
	command string
	logger  *slog.Logger

	mu      sync.RWMutex
	timeout time.Duration
}

// NewGenmonAdapter creates a new GenmonAdapter.
// A zero timeout lets a run last as long as its context.
func NewGenmonAdapter(timeout time.Duration, logger *slog.Logger) *GenmonAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenmonAdapter{
		command: Command,
		timeout: timeout,
		logger:  logger,
	}
}

// Name returns the adapter identifier.
func (a *GenmonAdapter) Name() string {
	return Command
}

// SetTimeout changes the deadline applied to subsequent runs.
func (a *GenmonAdapter) SetTimeout(timeout time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeout = timeout
}

// Timeout returns the deadline applied to each run.
func (a *GenmonAdapter) Timeout() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.timeout
}

// Read executes the command once.
//
// The trimmed stdout becomes the text even when the command exits non-zero.
// Only a failure to start, to collect output, or to finish before the
// deadline yields model.ErrorText.
func (a *GenmonAdapter) Read(ctx context.Context) model.Reading {
	start := time.Now()

	runID, err := model.NewRunID()
	if err != nil {
		a.logger.Debug("failed to generate run id", "error", err)
	}

	if timeout := a.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, a.command)
	cmd.WaitDelay = waitDelay
	output, err := cmd.Output()

	reading := model.Reading{
		RunID:    runID,
		At:       time.Now(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		reading.Text = model.ErrorText
		reading.Err = &AdapterError{Source: a.Name(), Message: "run did not finish", Err: ctx.Err()}
	case errors.As(err, &exitErr):
		reading.Text = ParseOutput(output)
		a.logger.Warn("paper-genmon exited with non-zero status",
			"run_id", runID,
			"exit_code", exitErr.ExitCode(),
			"stderr", strings.TrimSpace(string(exitErr.Stderr)),
		)
	case err != nil:
		reading.Text = model.ErrorText
		reading.Err = &AdapterError{Source: a.Name(), Message: "failed to execute", Err: err}
	default:
		reading.Text = ParseOutput(output)
	}

	if reading.Err != nil {
		a.logger.Warn("paper-genmon run failed", "run_id", runID, "duration", reading.Duration, "error", reading.Err)
	} else {
		a.logger.Debug("paper-genmon run finished", "run_id", runID, "duration", reading.Duration, "text", reading.Text)
	}

	return reading
}

// ParseOutput converts raw command stdout into panel text.
// Invalid UTF-8 is replaced and surrounding whitespace removed.
func ParseOutput(stdout []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(stdout), "�"))
}
