package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Desktop notification server coordinates.
const (
	NotificationsBusName   = "org.freedesktop.Notifications"
	NotificationsPath      = "/org/freedesktop/Notifications"
	NotificationsInterface = "org.freedesktop.Notifications"
)

// Urgency levels from the Desktop Notifications Specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Notification is a notification sent to the desktop notification server.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // milliseconds, -1 lets the server decide
}

// NotificationClient sends notifications over the session bus.
type NotificationClient struct {
	conn *dbus.Conn
}

// NewNotificationClient connects to the session bus.
func NewNotificationClient() (*NotificationClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &NotificationClient{conn: conn}, nil
}

// Send posts n and returns the id assigned by the server.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (c *NotificationClient) Send(n *Notification) (uint32, error) {
	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}

	obj := c.conn.Object(NotificationsBusName, NotificationsPath)
	call := obj.Call(NotificationsInterface+".Notify", 0,
		n.AppName, n.ReplacesID, n.AppIcon, n.Summary, n.Body, actions, hints, n.ExpireTimeout)
	if call.Err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to read notification id: %w", err)
	}
	return id, nil
}
