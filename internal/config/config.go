// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultItemID        = "io.ocf.paper-genmon-applet"
	DefaultTitle         = "Paper quota"
	DefaultIconName      = "printer"
	DefaultErrorIconName = "printer-error"
	DefaultTimeout       = 30 * time.Second
	DefaultLogLevel      = "warn"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the applet configuration.
// Loaded from ~/.config/paper-applet/config.toml
//
// The polled command and the polling interval are fixed and have no keys here.
type Config struct {
	Item    ItemConfig    `toml:"item"`
	Command CommandConfig `toml:"command"`
	Panel   PanelConfig   `toml:"panel"`
	Notify  NotifyConfig  `toml:"notify"`
	Log     LogConfig     `toml:"log"`
}

// ItemConfig controls how the tray item presents itself to the host.
type ItemConfig struct {
	ID            string `toml:"id"`
	Title         string `toml:"title"`
	IconName      string `toml:"icon_name"`
	ErrorIconName string `toml:"error_icon_name"` // shown while the last run failed
	Category      string `toml:"category"`
}

// CommandConfig bounds a single run of paper-genmon.
type CommandConfig struct {
	Timeout Duration `toml:"timeout"` // 0 disables the deadline
}

// PanelConfig contains settings for the optional layer-shell chip.
type PanelConfig struct {
	Enabled  bool   `toml:"enabled"`
	Position string `toml:"position"` // "top-right", "top-left", etc.
	OffsetX  int    `toml:"offset_x"`
	OffsetY  int    `toml:"offset_y"`
}

// NotifyConfig controls desktop notifications about the applet itself,
// such as a rejected config reload.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Category is a StatusNotifierItem category.
type Category string

const (
	CategoryApplicationStatus Category = "ApplicationStatus"
	CategoryCommunications    Category = "Communications"
	CategorySystemServices    Category = "SystemServices"
	CategoryHardware          Category = "Hardware"
)

// ValidCategories returns all valid category values.
func ValidCategories() []Category {
	return []Category{
		CategoryApplicationStatus,
		CategoryCommunications,
		CategorySystemServices,
		CategoryHardware,
	}
}

// Position represents a chip position on screen.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Item: ItemConfig{
			ID:            DefaultItemID,
			Title:         DefaultTitle,
			IconName:      DefaultIconName,
			ErrorIconName: DefaultErrorIconName,
			Category:      string(CategoryHardware),
		},
		Command: CommandConfig{
			Timeout: Duration(DefaultTimeout),
		},
		Panel: PanelConfig{
			Enabled:  false,
			Position: string(PositionTopRight),
			OffsetX:  10,
			OffsetY:  10,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Dir returns the applet configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Dir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "paper-applet"), nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StylePathFor returns the stylesheet path that belongs to a config file:
// style.css in the same directory.
func StylePathFor(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "style.css")
}

// Load loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Item.ID) == "" {
		return fmt.Errorf("item id must not be empty")
	}

	validCategory := false
	for _, cat := range ValidCategories() {
		if c.Item.Category == string(cat) {
			validCategory = true
			break
		}
	}
	if !validCategory {
		return fmt.Errorf("invalid category %q, must be one of: %v", c.Item.Category, ValidCategories())
	}

	if c.Command.Timeout < 0 {
		return fmt.Errorf("command timeout must not be negative, got %s", c.Command.Timeout.Duration())
	}

	validPos := false
	for _, p := range ValidPositions() {
		if c.Panel.Position == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Panel.Position, ValidPositions())
	}

	if c.Panel.OffsetX < 0 || c.Panel.OffsetY < 0 {
		return fmt.Errorf("panel offsets must not be negative, got %d,%d", c.Panel.OffsetX, c.Panel.OffsetY)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps a config log level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level %q", name)
	}
}
