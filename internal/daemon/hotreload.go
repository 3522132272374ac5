package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ocf/paper-applet/internal/config"
)

// defaultDebounce coalesces the burst of events editors produce for one save.
// The timer is armed by the first event of a burst and not pushed back by later
// ones, so a file rewritten continuously is still reloaded every debounce period.
const defaultDebounce = 150 * time.Millisecond

// ConfigWatcher watches the config file and the panel stylesheet for changes.
// The directory is watched rather than the files so atomic renames are seen.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	configPath string
	stylePath  string
	debounce   time.Duration

	// Last applied config; a rewrite with identical content is not reported
	currentConfig *config.Config
	lastFailed    bool

	onReloadCallback func(newConfig *config.Config)
	onErrorCallback  func(err error)
	onStyleCallback  func()

	ready chan struct{}
}

// NewConfigWatcher creates a watcher for configPath and, if non-empty, stylePath.
// Both files must live in the same directory.
func NewConfigWatcher(configPath, stylePath string, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if stylePath != "" && filepath.Dir(stylePath) != filepath.Dir(configPath) {
		return nil, fmt.Errorf("style file %s is not next to config file %s", stylePath, configPath)
	}

	return &ConfigWatcher{
		logger:     logger,
		configPath: configPath,
		stylePath:  stylePath,
		debounce:   defaultDebounce,
		ready:      make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the callback to invoke when config is successfully reloaded.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback to invoke when config reload fails validation.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// SetStyleCallback sets the callback to invoke when the stylesheet changes.
func (w *ConfigWatcher) SetStyleCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onStyleCallback = callback
}

// Ready is closed once Run watches the config directory.
func (w *ConfigWatcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. The config directory is created if missing.
// Run must be called at most once.
func (w *ConfigWatcher) Run(ctx context.Context, initialConfig *config.Config) error {
	w.mu.Lock()
	w.currentConfig = initialConfig
	w.mu.Unlock()

	dir := filepath.Dir(w.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	close(w.ready)

	w.logger.Debug("config watcher started", "path", w.configPath, "style", w.stylePath)
	defer w.logger.Debug("config watcher stopped")

	var (
		timer        *time.Timer
		fire         <-chan time.Time
		configDirty  bool
		styleChanged bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			switch filepath.Clean(event.Name) {
			case filepath.Clean(w.configPath):
				configDirty = true
			case filepath.Clean(w.stylePath):
				styleChanged = true
			default:
				continue
			}

			if fire != nil {
				// Already pending; folded into that reload
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if configDirty {
				configDirty = false
				w.reloadConfig()
			}
			if styleChanged {
				styleChanged = false
				w.styleChanged()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// reloadConfig loads and validates the config file.
func (w *ConfigWatcher) reloadConfig() {
	w.mu.RLock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	w.mu.RUnlock()

	if _, err := os.Stat(w.configPath); err != nil {
		// Removed or mid-rename; the next event settles it
		w.logger.Debug("config file not readable", "path", w.configPath, "error", err)
		return
	}

	newConfig, err := config.Load(w.configPath)
	if err != nil {
		w.mu.Lock()
		w.lastFailed = true
		w.mu.Unlock()

		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.mu.Lock()
	unchanged := !w.lastFailed && reflect.DeepEqual(w.currentConfig, newConfig)
	w.currentConfig = newConfig
	w.lastFailed = false
	w.mu.Unlock()

	if unchanged {
		w.logger.Debug("config file rewritten without changes")
		return
	}

	w.logger.Info("config reloaded successfully")
	if reloadCallback != nil {
		reloadCallback(newConfig)
	}
}

func (w *ConfigWatcher) styleChanged() {
	w.mu.RLock()
	callback := w.onStyleCallback
	w.mu.RUnlock()

	w.logger.Info("stylesheet changed", "path", w.stylePath)
	if callback != nil {
		callback()
	}
}
