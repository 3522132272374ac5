// Package dbus exports the applet as an org.kde.StatusNotifierItem on the
// session bus so that any StatusNotifierItem host (KDE Plasma, COSMIC, the
// waybar tray, the GNOME AppIndicator extension) can draw it.
//
// The panel text is published as the item's ToolTip title and as the
// XAyatanaLabel text label. Activating the item requests an immediate refresh.
package dbus
