package applet

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Program wraps a Bubble Tea program running the applet model.
type Program struct {
	program *tea.Program
	ctx     context.Context
}

// NewHeadlessProgram creates a program with no terminal attached.
// State reaches the outside world only through the model's sinks.
func NewHeadlessProgram(ctx context.Context, m Model) *Program {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	return &Program{program: p, ctx: ctx}
}

// NewTerminalProgram creates a program that renders the model in the terminal.
func NewTerminalProgram(ctx context.Context, m Model) *Program {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	return &Program{program: p, ctx: ctx}
}

// Refresh requests an immediate run. It is safe to call from any goroutine.
func (p *Program) Refresh() {
	go p.program.Send(RefreshMsg{})
}

// Run blocks until the program quits or its context is cancelled.
// Cancellation is a normal shutdown and returns nil.
func (p *Program) Run() error {
	_, err := p.program.Run()
	if err != nil && p.ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
