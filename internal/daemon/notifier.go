package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/ocf/paper-applet/internal/dbus"
)

// NotificationLevel indicates the urgency of a notification about the applet.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// SendFunc delivers a notification, e.g. (*dbus.NotificationClient).Send.
type SendFunc func(n *dbus.Notification) (uint32, error)

// Notifier posts desktop notifications about the applet's own problems.
// It rate limits per key so a config saved in a loop does not flood the desktop.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	send SendFunc

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewNotifier creates a Notifier delivering through send.
func NewNotifier(send SendFunc, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		send:           send,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification unless it is disabled or rate limited.
// A nil Notifier drops everything.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) {
	if n == nil {
		return
	}
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}

	if n.send == nil {
		n.mu.Unlock()
		n.logger.Debug("notification skipped: no sender", "summary", summary)
		return
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now
	send := n.send
	n.mu.Unlock()

	urgency := dbus.UrgencyNormal
	icon := "dialog-warning"
	switch level {
	case NotificationLevelInfo:
		urgency = dbus.UrgencyLow
		icon = "dialog-information"
	case NotificationLevelError:
		urgency = dbus.UrgencyCritical
		icon = "dialog-error"
	}

	notification := &dbus.Notification{
		AppName: "paper-applet",
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":   godbus.MakeVariant(urgency),
			"category":  godbus.MakeVariant("device"),
			"transient": godbus.MakeVariant(true),
		},
		ExpireTimeout: 5000,
	}

	n.logger.Debug("sending notification", "key", key, "summary", summary, "level", level)
	if _, err := send(notification); err != nil {
		n.logger.Warn("failed to send notification", "summary", summary, "error", err)
	}
}

// NotifyConfigReloaded reports a successful config reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"paper-applet configuration has been reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError reports a config file that was rejected on reload.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Keeping the previous configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyStyleError reports a user stylesheet that could not be applied.
func (n *Notifier) NotifyStyleError(err error) {
	n.Notify(
		"style-error",
		"Stylesheet Error",
		"Failed to apply style.css: "+err.Error(),
		NotificationLevelWarning,
	)
}
