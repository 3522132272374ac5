package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// emit sends an item signal. Failures are logged, hosts re-read properties
// on the next signal anyway.
func (i *StatusNotifierItem) emit(name string, values ...any) {
	if i.conn == nil {
		return
	}

	if err := i.conn.Emit(ItemPath, ItemInterface+"."+name, values...); err != nil {
		i.logger.Warn("failed to emit signal", "signal", name, "error", err)
		return
	}

	i.logger.Debug("emitted signal", "signal", name)
}

// register announces the item to the StatusNotifierWatcher.
func (i *StatusNotifierItem) register() error {
	obj := i.conn.Object(WatcherBusName, WatcherPath)
	call := obj.Call(WatcherInterface+".RegisterStatusNotifierItem", 0, i.busName)
	if call.Err != nil {
		return fmt.Errorf("failed to register with %s: %w", WatcherBusName, call.Err)
	}

	i.logger.Debug("registered with StatusNotifierWatcher", "bus_name", i.busName)
	return nil
}

// watcherOwnerMatch matches ownership changes of the watcher's well-known name.
func watcherOwnerMatch() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, WatcherBusName),
	}
}

// watchWatcher re-registers the item whenever a StatusNotifierWatcher
// takes the well-known name, e.g. after the panel restarts.
func (i *StatusNotifierItem) watchWatcher() error {
	if err := i.conn.AddMatchSignal(watcherOwnerMatch()...); err != nil {
		return fmt.Errorf("failed to watch %s: %w", WatcherBusName, err)
	}

	i.signals = make(chan *dbus.Signal, 8)
	i.conn.Signal(i.signals)

	go func(signals <-chan *dbus.Signal) {
		for signal := range signals {
			if !watcherAppeared(signal) {
				continue
			}

			i.logger.Info("StatusNotifierWatcher appeared, registering")
			if err := i.register(); err != nil {
				i.logger.Warn("failed to register item", "error", err)
			}
		}
	}(i.signals)

	return nil
}

// watcherAppeared reports whether signal says the watcher name got a new owner.
func watcherAppeared(signal *dbus.Signal) bool {
	if signal == nil || signal.Name != "org.freedesktop.DBus.NameOwnerChanged" {
		return false
	}

	if len(signal.Body) < 3 {
		return false
	}

	name, ok := signal.Body[0].(string)
	if !ok || name != WatcherBusName {
		return false
	}

	newOwner, ok := signal.Body[2].(string)
	return ok && newOwner != ""
}
