package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader applies the bundled stylesheet and the optional user stylesheet.
// The user stylesheet sits at a higher priority so any rule overrides the bundled one.
// All methods must be called on the GTK main loop.
type Loader struct {
	mu     sync.Mutex
	logger *slog.Logger

	base *gtk.CSSProvider
	user *gtk.CSSProvider

	style    *UserStyle // nil without a stylesheet path
	parseErr error
}

// NewLoader creates a loader for the user stylesheet at stylePath.
func NewLoader(stylePath string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Loader{
		logger: logger,
		base:   gtk.NewCSSProvider(),
		user:   gtk.NewCSSProvider(),
	}
	if stylePath != "" {
		l.style = NewUserStyle(stylePath)
	}

	l.user.ConnectParsingError(func(section *gtk.CSSSection, err error) {
		l.logger.Warn("stylesheet parse error", "path", stylePath, "location", section.String(), "error", err)
		l.parseErr = errors.Join(l.parseErr, err)
	})

	l.base.LoadFromString(DefaultCSS())
	return l
}

// Apply attaches both providers to display.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply stylesheet")
		return
	}

	gtk.StyleContextAddProviderForDisplay(display, l.base, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	gtk.StyleContextAddProviderForDisplay(display, l.user, gtk.STYLE_PROVIDER_PRIORITY_USER)
}

// Load re-reads the user stylesheet and hands it to GTK if it changed.
// A removed file clears the user rules.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.style == nil {
		return nil
	}

	css, changed, err := l.style.Refresh()
	if err != nil {
		return err
	}
	if !changed {
		l.logger.Debug("user stylesheet unchanged")
		return nil
	}

	l.parseErr = nil
	l.user.LoadFromString(css)
	if l.parseErr != nil {
		return fmt.Errorf("invalid stylesheet: %w", l.parseErr)
	}

	if sheet := l.style.Current(); sheet != nil {
		l.logger.Info("loaded user stylesheet", "path", sheet.Path, "modified", sheet.ModTime)
	} else {
		l.logger.Info("user stylesheet removed, using bundled style")
	}
	return nil
}
