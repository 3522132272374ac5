package dbus

import (
	"fmt"

	"github.com/ocf/paper-applet/internal/model"
)

const (
	// ItemInterface is the StatusNotifierItem interface name.
	ItemInterface = "org.kde.StatusNotifierItem"
	// ItemPath is the object path the item is exported at.
	ItemPath = "/StatusNotifierItem"

	// WatcherBusName is the well-known name of the StatusNotifierWatcher.
	WatcherBusName = "org.kde.StatusNotifierWatcher"
	// WatcherInterface is the StatusNotifierWatcher interface name.
	WatcherInterface = "org.kde.StatusNotifierWatcher"
	// WatcherPath is the object path of the StatusNotifierWatcher.
	WatcherPath = "/StatusNotifierWatcher"

	propertiesInterface     = "org.freedesktop.DBus.Properties"
	introspectableInterface = "org.freedesktop.DBus.Introspectable"

	// noMenuPath tells hosts the item has no com.canonical.dbusmenu menu.
	noMenuPath = "/NO_DBUSMENU"
)

// Status is the StatusNotifierItem status.
type Status string

const (
	// StatusPassive marks an item hosts may hide.
	StatusPassive Status = "Passive"
	// StatusActive marks an item that should be shown.
	StatusActive Status = "Active"
	// StatusNeedsAttention marks an item hosts should emphasize.
	StatusNeedsAttention Status = "NeedsAttention"
)

// Pixmap is one ARGB32 icon image in network byte order, D-Bus signature (iiay).
type Pixmap struct {
	Width  int32
	Height int32
	Data   []byte
}

// ToolTip is the StatusNotifierItem tooltip, D-Bus signature (sa(iiay)ss).
type ToolTip struct {
	IconName    string
	IconPixmap  []Pixmap
	Title       string
	Description string
}

// ItemInfo holds the presentation settings that do not depend on state.
type ItemInfo struct {
	ID            string
	Title         string
	IconName      string
	ErrorIconName string
	Category      string
}

// ItemBusName returns the bus name an item with the given pid and sequence
// number should request, per the StatusNotifierItem naming convention.
func ItemBusName(pid, seq int) string {
	return fmt.Sprintf("org.kde.StatusNotifierItem-%d-%d", pid, seq)
}

// StatusFor maps applet state to an item status.
func StatusFor(state model.State) Status {
	if state.Failed {
		return StatusNeedsAttention
	}
	return StatusActive
}

// IconFor returns the icon name to show for state.
func IconFor(info ItemInfo, state model.State) string {
	if state.Failed && info.ErrorIconName != "" {
		return info.ErrorIconName
	}
	return info.IconName
}

// ToolTipFor builds the tooltip shown when hovering the item.
func ToolTipFor(info ItemInfo, state model.State) ToolTip {
	var description string
	switch {
	case state.Loading():
		description = info.Title
	case state.Failed:
		description = fmt.Sprintf("%s, last run failed %s", info.Title, state.RelativeTime())
	default:
		description = fmt.Sprintf("%s, updated %s", info.Title, state.RelativeTime())
	}

	return ToolTip{
		IconName:    IconFor(info, state),
		IconPixmap:  []Pixmap{},
		Title:       state.Text,
		Description: description,
	}
}
