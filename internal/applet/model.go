// Package applet implements the applet's state machine as a Bubble Tea model.
//
// The same model drives the headless daemon, where frontends are attached as
// sinks, and the terminal frontend, where View is rendered directly.
package applet

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ocf/paper-applet/internal/adapter/input"
	"github.com/ocf/paper-applet/internal/model"
)

// Interval is the fixed time between two timer ticks.
const Interval = 5 * time.Second

// TickMsg asks for a new run. The timer sends one every Interval.
type TickMsg time.Time

// RefreshMsg asks for a run right away, e.g. after a click.
// Unlike TickMsg it does not schedule another tick.
type RefreshMsg struct{}

// UpdateTextMsg carries the result of a finished run.
type UpdateTextMsg model.Reading

// Sink receives every state the model settles on.
type Sink interface {
	Render(state model.State)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(state model.State)

// Render calls f(state).
func (f SinkFunc) Render(state model.State) {
	f(state)
}

// Model is the applet model.
type Model struct {
	ctx      context.Context
	source   input.Source
	interval time.Duration
	logger   *slog.Logger
	sinks    []Sink

	state    model.State
	inFlight bool

	keys KeyMap
	help help.Model
}

// Option configures a Model.
type Option func(*Model)

// WithSink adds a frontend that is handed every state.
func WithSink(sink Sink) Option {
	return func(m *Model) {
		m.sinks = append(m.sinks, sink)
	}
}

// WithLogger sets the model's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithContext sets the context handed to each run; cancelling it aborts a running command.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// withInterval overrides the tick interval; used by tests.
func withInterval(d time.Duration) Option {
	return func(m *Model) {
		m.interval = d
	}
}

// New creates a model reading from source.
func New(source input.Source, opts ...Option) Model {
	m := Model{
		ctx:      context.Background(),
		source:   source,
		interval: Interval,
		logger:   slog.Default(),
		state:    model.InitialState(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// State returns the current state.
func (m Model) State() model.State {
	return m.state
}

// Init shows the initial text and runs the command immediately.
func (m Model) Init() tea.Cmd {
	m.render()
	return func() tea.Msg {
		return TickMsg(time.Now())
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		run := m.startRun("tick")
		return m, tea.Batch(m.scheduleTick(), run)

	case RefreshMsg:
		run := m.startRun("refresh")
		return m, run

	case UpdateTextMsg:
		m.inFlight = false
		m.state = m.state.Apply(model.Reading(msg))
		m.render()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses from the terminal frontend.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg { return RefreshMsg{} }
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// scheduleTick returns a command that fires the next TickMsg after the interval.
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// startRun marks a run in flight and returns the command performing it.
// A request arriving while a run is still going is dropped so results stay in order.
func (m *Model) startRun(reason string) tea.Cmd {
	if m.inFlight {
		m.logger.Debug("run already in flight, skipping", "reason", reason)
		return nil
	}
	m.inFlight = true

	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		return UpdateTextMsg(source.Read(ctx))
	}
}

// render hands the current state to every sink.
func (m Model) render() {
	for _, sink := range m.sinks {
		sink.Render(m.state)
	}
}

var (
	chipStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	chipErrorStyle = chipStyle.
			Foreground(lipgloss.Color("9")).
			BorderForeground(lipgloss.Color("9"))

	ageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View renders the panel text as a button-like chip with a help line.
func (m Model) View() string {
	style := chipStyle
	if m.state.Failed {
		style = chipErrorStyle
	}

	chip := style.Render(m.state.Text)
	age := ageStyle.Render("updated " + m.state.RelativeTime())

	return lipgloss.JoinVertical(lipgloss.Left,
		chip,
		age,
		m.help.View(m.keys),
	)
}
