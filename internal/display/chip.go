package display

import (
	"log/slog"
	"sync"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/ocf/paper-applet/internal/config"
	"github.com/ocf/paper-applet/internal/model"
	"github.com/ocf/paper-applet/internal/theme"
)

// Chip is the panel chip window. Render, UpdateConfig and ReloadStyle may be
// called from any goroutine; the work is scheduled on the GTK main loop.
type Chip struct {
	window *gtk.Window
	button *gtk.Button
	label  *gtk.Label
	styles *theme.Loader
	logger *slog.Logger

	mu      sync.Mutex
	onClick func()
}

// NewChip creates the chip window. Must be called on the GTK main loop.
func NewChip(app *gtk.Application, cfg config.PanelConfig, styles *theme.Loader, logger *slog.Logger) *Chip {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Chip{
		styles: styles,
		logger: logger,
	}

	c.window = gtk.NewWindow()
	c.window.SetApplication(app)
	c.window.SetDecorated(false)
	c.window.SetResizable(false)
	c.window.AddCSSClass("paper-applet")

	layershell.InitForWindow(c.window)
	layershell.SetLayer(c.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(c.window, 0) // Don't reserve space
	layershell.SetKeyboardMode(c.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(c.window, "paper-applet")
	applyPlacement(c.window, PlacementFor(cfg))

	c.label = gtk.NewLabel(model.LoadingText)
	c.label.AddCSSClass("paper-label")
	c.label.SetSingleLineMode(true)

	c.button = gtk.NewButton()
	c.button.SetHasFrame(false)
	c.button.AddCSSClass("paper-chip")
	c.button.AddCSSClass("loading")
	c.button.SetChild(c.label)
	c.button.ConnectClicked(c.clicked)

	c.window.SetChild(c.button)
	return c
}

// Show presents the window.
func (c *Chip) Show() {
	c.window.Present()
}

// SetClickHandler sets the function called when the chip is clicked.
func (c *Chip) SetClickHandler(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClick = handler
}

func (c *Chip) clicked() {
	c.mu.Lock()
	handler := c.onClick
	c.mu.Unlock()

	c.logger.Debug("panel chip clicked")
	if handler != nil {
		handler()
	}
}

// Render shows state's text.
func (c *Chip) Render(state model.State) {
	glib.IdleAdd(func() {
		c.label.SetText(state.Text)
		c.button.SetTooltipText("updated " + state.RelativeTime())

		setClass(c.button, "loading", state.Loading())
		setClass(c.button, "error", state.Failed)
	})
}

// UpdateConfig moves the chip after a config reload.
func (c *Chip) UpdateConfig(cfg config.PanelConfig) {
	glib.IdleAdd(func() {
		applyPlacement(c.window, PlacementFor(cfg))
	})
}

// ReloadStyle re-reads the user stylesheet. onError receives a read or
// parse failure; the previous rules stay in place for unreadable files.
func (c *Chip) ReloadStyle(onError func(err error)) {
	glib.IdleAdd(func() {
		if err := c.styles.Load(); err != nil {
			c.logger.Warn("failed to load stylesheet", "error", err)
			if onError != nil {
				go onError(err)
			}
		}
	})
}

// Close closes the window.
func (c *Chip) Close() {
	glib.IdleAdd(func() {
		c.window.Close()
	})
}

func setClass(w *gtk.Button, class string, on bool) {
	if on {
		w.AddCSSClass(class)
	} else {
		w.RemoveCSSClass(class)
	}
}
