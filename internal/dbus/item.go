package dbus

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"github.com/ocf/paper-applet/internal/model"
)

// ActivateHandler is called when the host activates the item, e.g. on click.
type ActivateHandler func()

// StatusNotifierItem implements the org.kde.StatusNotifierItem D-Bus interface.
type StatusNotifierItem struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	busName string

	mu         sync.Mutex
	props      *prop.Properties
	info       ItemInfo
	state      model.State
	onActivate ActivateHandler
	signals    chan *dbus.Signal
	running    bool
}

// NewStatusNotifierItem creates a new StatusNotifierItem.
func NewStatusNotifierItem(info ItemInfo, logger *slog.Logger) *StatusNotifierItem {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusNotifierItem{
		logger:  logger,
		busName: ItemBusName(os.Getpid(), 1),
		info:    info,
		state:   model.InitialState(),
	}
}

// SetActivateHandler sets the handler called on Activate and SecondaryActivate.
func (i *StatusNotifierItem) SetActivateHandler(handler ActivateHandler) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onActivate = handler
}

// BusName returns the bus name claimed by the item.
func (i *StatusNotifierItem) BusName() string {
	return i.busName
}

// Start connects to the session bus, exports the item and registers it with
// the StatusNotifierWatcher. On failure nothing stays exported.
//
// A missing watcher is not an error: the item registers as soon as one appears.
func (i *StatusNotifierItem) Start() (err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.running {
		return fmt.Errorf("item already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	i.conn = conn

	ownsName := false
	defer func() {
		if err == nil {
			return
		}
		if ownsName {
			if _, relErr := conn.ReleaseName(i.busName); relErr != nil {
				i.logger.Warn("failed to release bus name", "error", relErr)
			}
		}
		i.unexport()
	}()

	if err := conn.Export(i, ItemPath, ItemInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	props, err := prop.Export(conn, ItemPath, prop.Map{
		ItemInterface: i.propertyMap(),
	})
	if err != nil {
		return fmt.Errorf("failed to export properties: %w", err)
	}
	i.props = props

	node := &introspect.Node{
		Name: ItemPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       ItemInterface,
				Methods:    itemMethods(),
				Signals:    itemSignals(),
				Properties: props.Introspection(ItemInterface),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ItemPath, introspectableInterface); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(i.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", i.busName)
	}
	ownsName = true

	if err := i.watchWatcher(); err != nil {
		return err
	}

	if err := i.register(); err != nil {
		i.logger.Warn("no StatusNotifierWatcher yet, waiting for one to appear", "error", err)
	}

	i.running = true
	i.logger.Info("StatusNotifierItem exported", "bus_name", i.busName, "path", ItemPath)
	return nil
}

// Stop unsubscribes from bus signals, removes the exported object and
// releases the bus name.
func (i *StatusNotifierItem) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running {
		return nil
	}
	i.running = false

	if err := i.conn.RemoveMatchSignal(watcherOwnerMatch()...); err != nil {
		i.logger.Warn("failed to remove signal match", "error", err)
	}
	i.conn.RemoveSignal(i.signals)
	close(i.signals)

	if _, err := i.conn.ReleaseName(i.busName); err != nil {
		i.logger.Warn("failed to release bus name", "error", err)
	}
	i.unexport()
	// Don't close the connection as it's shared (SessionBus)

	i.logger.Info("StatusNotifierItem stopped")
	return nil
}

// unexport removes every interface exported at ItemPath. Without props,
// Render only records state.
func (i *StatusNotifierItem) unexport() {
	for _, iface := range []string{ItemInterface, propertiesInterface, introspectableInterface} {
		if err := i.conn.Export(nil, ItemPath, iface); err != nil {
			i.logger.Debug("failed to unexport", "interface", iface, "error", err)
		}
	}
	i.props = nil
}

// Render publishes state: label, tooltip, status and icon.
// It may be called before Start; the latest state is applied on export.
func (i *StatusNotifierItem) Render(state model.State) {
	i.mu.Lock()
	defer i.mu.Unlock()

	prev := i.state
	i.state = state

	if i.props == nil {
		return
	}

	i.props.SetMust(ItemInterface, "XAyatanaLabel", state.Text)
	i.props.SetMust(ItemInterface, "ToolTip", ToolTipFor(i.info, state))
	i.emit("NewToolTip")

	if state.Text != prev.Text {
		i.emit("XAyatanaNewLabel", state.Text, "")
	}

	if status := StatusFor(state); status != StatusFor(prev) {
		i.props.SetMust(ItemInterface, "Status", string(status))
		i.emit("NewStatus", string(status))
	}

	if icon := IconFor(i.info, state); icon != IconFor(i.info, prev) {
		i.props.SetMust(ItemInterface, "IconName", icon)
		i.emit("NewIcon")
	}
}

// UpdateInfo applies new presentation settings, e.g. after a config reload.
// The item ID and category are fixed for the lifetime of the bus object.
func (i *StatusNotifierItem) UpdateInfo(info ItemInfo) {
	i.mu.Lock()
	defer i.mu.Unlock()

	prev := i.info
	info.ID = prev.ID
	info.Category = prev.Category
	i.info = info

	if i.props == nil {
		return
	}

	if info.Title != prev.Title {
		i.props.SetMust(ItemInterface, "Title", info.Title)
		i.emit("NewTitle")
	}

	if IconFor(info, i.state) != IconFor(prev, i.state) {
		i.props.SetMust(ItemInterface, "IconName", IconFor(info, i.state))
		i.emit("NewIcon")
	}

	i.props.SetMust(ItemInterface, "ToolTip", ToolTipFor(info, i.state))
	i.emit("NewToolTip")
}

// propertyMap returns the exported properties for the current info and state.
func (i *StatusNotifierItem) propertyMap() map[string]*prop.Prop {
	constant := func(v any) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitConst}
	}
	changing := func(v any) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitTrue}
	}

	return map[string]*prop.Prop{
		"Category":              constant(i.info.Category),
		"Id":                    constant(i.info.ID),
		"WindowId":              constant(uint32(0)),
		"ItemIsMenu":            constant(false),
		"Menu":                  constant(dbus.ObjectPath(noMenuPath)),
		"IconPixmap":            constant([]Pixmap{}),
		"OverlayIconName":       constant(""),
		"OverlayIconPixmap":     constant([]Pixmap{}),
		"AttentionIconName":     constant(""),
		"AttentionIconPixmap":   constant([]Pixmap{}),
		"AttentionMovieName":    constant(""),
		"IconThemePath":         constant(""),
		"XAyatanaLabelGuide":    constant(""),
		"XAyatanaOrderingIndex": constant(uint32(0)),
		"Title":                 changing(i.info.Title),
		"Status":                changing(string(StatusFor(i.state))),
		"IconName":              changing(IconFor(i.info, i.state)),
		"ToolTip":               changing(ToolTipFor(i.info, i.state)),
		"XAyatanaLabel":         changing(i.state.Text),
	}
}

// activate runs the activate handler outside the lock.
func (i *StatusNotifierItem) activate(method string) {
	i.mu.Lock()
	handler := i.onActivate
	i.mu.Unlock()

	i.logger.Debug("item activated", "method", method)
	if handler != nil {
		handler()
	}
}

// Activate asks the item for its primary action: refresh now.
// D-Bus method: Activate(ii) -> nothing
func (i *StatusNotifierItem) Activate(x, y int32) *dbus.Error {
	i.activate("Activate")
	return nil
}

// SecondaryActivate behaves like Activate.
// D-Bus method: SecondaryActivate(ii) -> nothing
func (i *StatusNotifierItem) SecondaryActivate(x, y int32) *dbus.Error {
	i.activate("SecondaryActivate")
	return nil
}

// ContextMenu is accepted and ignored: the item has no menu.
// D-Bus method: ContextMenu(ii) -> nothing
func (i *StatusNotifierItem) ContextMenu(x, y int32) *dbus.Error {
	i.logger.Debug("ContextMenu called", "x", x, "y", y)
	return nil
}

// Scroll is accepted and ignored.
// D-Bus method: Scroll(is) -> nothing
func (i *StatusNotifierItem) Scroll(delta int32, orientation string) *dbus.Error {
	i.logger.Debug("Scroll called", "delta", delta, "orientation", orientation)
	return nil
}

// itemMethods returns the D-Bus method introspection data.
func itemMethods() []introspect.Method {
	point := []introspect.Arg{
		{Name: "x", Type: "i", Direction: "in"},
		{Name: "y", Type: "i", Direction: "in"},
	}
	return []introspect.Method{
		{Name: "Activate", Args: point},
		{Name: "SecondaryActivate", Args: point},
		{Name: "ContextMenu", Args: point},
		{
			Name: "Scroll",
			Args: []introspect.Arg{
				{Name: "delta", Type: "i", Direction: "in"},
				{Name: "orientation", Type: "s", Direction: "in"},
			},
		},
	}
}

// itemSignals returns the D-Bus signal introspection data.
func itemSignals() []introspect.Signal {
	return []introspect.Signal{
		{Name: "NewTitle"},
		{Name: "NewIcon"},
		{Name: "NewAttentionIcon"},
		{Name: "NewOverlayIcon"},
		{Name: "NewToolTip"},
		{
			Name: "NewStatus",
			Args: []introspect.Arg{{Name: "status", Type: "s"}},
		},
		{
			Name: "XAyatanaNewLabel",
			Args: []introspect.Arg{
				{Name: "label", Type: "s"},
				{Name: "guide", Type: "s"},
			},
		},
	}
}
