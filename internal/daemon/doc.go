// Package daemon provides the main orchestration for paper-applet.
// It coordinates the applet program, the StatusNotifierItem, the optional
// panel chip and configuration hot-reload.
package daemon
