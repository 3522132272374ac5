package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ocf/paper-applet/internal/config"
)

// watchEvents records watcher callbacks.
type watchEvents struct {
	mu      sync.Mutex
	configs []*config.Config
	errs    []error
	styles  int
}

func (e *watchEvents) snapshot() ([]*config.Config, []error, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*config.Config(nil), e.configs...), append([]error(nil), e.errs...), e.styles
}

// startWatcher runs a watcher on dir; the returned stop cancels it and waits.
func startWatcher(t *testing.T, dir string) (*ConfigWatcher, *watchEvents, func()) {
	t.Helper()

	configPath := filepath.Join(dir, "config.toml")
	w, err := NewConfigWatcher(configPath, config.StylePathFor(configPath), nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	events := &watchEvents{}
	w.SetReloadCallback(func(cfg *config.Config) {
		events.mu.Lock()
		defer events.mu.Unlock()
		events.configs = append(events.configs, cfg)
	})
	w.SetErrorCallback(func(err error) {
		events.mu.Lock()
		defer events.mu.Unlock()
		events.errs = append(events.errs, err)
	})
	w.SetStyleCallback(func() {
		events.mu.Lock()
		defer events.mu.Unlock()
		events.styles++
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, config.DefaultConfig()) }()

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	}

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		stop()
		t.Fatal("watcher not ready")
	}

	return w, events, stop
}

func TestConfigWatcher_ReloadsValidConfig(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	_, events, stop := startWatcher(t, dir)
	defer stop()

	content := "[item]\ntitle = \"Printing\"\n\n[command]\ntimeout = \"5s\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	require.Eventually(t, func() bool {
		configs, _, _ := events.snapshot()
		return len(configs) > 0
	}, 5*time.Second, 10*time.Millisecond)

	configs, errs, _ := events.snapshot()
	assert.Empty(t, errs)
	assert.Equal(t, "Printing", configs[len(configs)-1].Item.Title)
	assert.Equal(t, 5*time.Second, configs[len(configs)-1].Command.Timeout.Duration())
}

func TestConfigWatcher_RejectsInvalidConfig(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	_, events, stop := startWatcher(t, dir)
	defer stop()

	content := "[item]\ncategory = \"Printers\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	require.Eventually(t, func() bool {
		_, errs, _ := events.snapshot()
		return len(errs) > 0
	}, 5*time.Second, 10*time.Millisecond)

	configs, errs, _ := events.snapshot()
	assert.Empty(t, configs)
	assert.ErrorContains(t, errs[0], "invalid category")
}

func TestConfigWatcher_ReloadsDuringSteadyWrites(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	_, events, stop := startWatcher(t, dir)
	defer stop()

	// Rewrite far more often than the debounce period; the reload must not wait for quiet
	path := filepath.Join(dir, "config.toml")
	deadline := time.Now().Add(2 * time.Second)
	reloaded := false
	for !reloaded && time.Now().Before(deadline) {
		require.NoError(t, os.WriteFile(path, []byte("[item]\ntitle = \"Busy\"\n"), 0644))
		time.Sleep(5 * time.Millisecond)

		configs, _, _ := events.snapshot()
		reloaded = len(configs) > 0
	}

	require.True(t, reloaded, "no reload while the file kept changing")
	configs, _, _ := events.snapshot()
	assert.Equal(t, "Busy", configs[0].Item.Title)
}

func TestConfigWatcher_SkipsUnchangedRewrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	_, events, stop := startWatcher(t, dir)
	defer stop()

	path := filepath.Join(dir, "config.toml")
	valid := []byte("[item]\ntitle = \"Printing\"\n")
	reloads := func() int {
		configs, _, _ := events.snapshot()
		return len(configs)
	}

	require.NoError(t, os.WriteFile(path, valid, 0644))
	require.Eventually(t, func() bool { return reloads() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, valid, 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, reloads(), "identical content is not reported")

	// After a rejected edit, restoring the same content counts as a reload
	require.NoError(t, os.WriteFile(path, []byte("[item]\ncategory = \"Printers\"\n"), 0644))
	require.Eventually(t, func() bool {
		_, errs, _ := events.snapshot()
		return len(errs) > 0
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, valid, 0644))
	require.Eventually(t, func() bool { return reloads() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestConfigWatcher_StyleChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	_, events, stop := startWatcher(t, dir)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte(".paper-label { font-size: 20px; }"), 0644))

	require.Eventually(t, func() bool {
		_, _, styles := events.snapshot()
		return styles > 0
	}, 5*time.Second, 10*time.Millisecond)

	configs, errs, _ := events.snapshot()
	assert.Empty(t, configs, "style change does not reload config")
	assert.Empty(t, errs)
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	_, events, stop := startWatcher(t, dir)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	time.Sleep(200 * time.Millisecond)

	configs, errs, styles := events.snapshot()
	assert.Empty(t, configs)
	assert.Empty(t, errs)
	assert.Zero(t, styles)
}

func TestConfigWatcher_CreatesMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := filepath.Join(t.TempDir(), "paper-applet")
	_, _, stop := startWatcher(t, dir)
	defer stop()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigWatcher_StyleMustShareDir(t *testing.T) {
	_, err := NewConfigWatcher("/a/config.toml", "/b/style.css", nil)
	assert.Error(t, err)

	_, err = NewConfigWatcher("/a/config.toml", "", nil)
	assert.NoError(t, err)
}

func TestConfigWatcher_RunFailsOnUnwatchableDir(t *testing.T) {
	// A regular file where the directory should be
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	w, err := NewConfigWatcher(filepath.Join(blocker, "config.toml"), "", nil)
	require.NoError(t, err)

	err = w.Run(context.Background(), config.DefaultConfig())
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
