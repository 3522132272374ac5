package display

import (
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/ocf/paper-applet/internal/config"
)

// Edge is a screen edge the chip can be anchored to.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// Placement is where the chip sits: the anchored edges and their margins.
type Placement struct {
	Anchors map[Edge]bool
	Margins map[Edge]int
}

// PlacementFor computes the placement for a configured position.
// Centered positions anchor one edge only and ignore the horizontal offset.
func PlacementFor(cfg config.PanelConfig) Placement {
	p := Placement{
		Anchors: map[Edge]bool{},
		Margins: map[Edge]int{},
	}

	vertical := EdgeTop
	switch config.Position(cfg.Position) {
	case config.PositionBottomLeft, config.PositionBottomRight, config.PositionBottomCenter:
		vertical = EdgeBottom
	}
	p.Anchors[vertical] = true
	p.Margins[vertical] = cfg.OffsetY

	switch config.Position(cfg.Position) {
	case config.PositionTopLeft, config.PositionBottomLeft:
		p.Anchors[EdgeLeft] = true
		p.Margins[EdgeLeft] = cfg.OffsetX
	case config.PositionTopRight, config.PositionBottomRight:
		p.Anchors[EdgeRight] = true
		p.Margins[EdgeRight] = cfg.OffsetX
	}

	return p
}

var layerEdges = map[Edge]layershell.LayerShellEdge{
	EdgeTop:    layershell.LayerShellEdgeTop,
	EdgeBottom: layershell.LayerShellEdgeBottom,
	EdgeLeft:   layershell.LayerShellEdgeLeft,
	EdgeRight:  layershell.LayerShellEdgeRight,
}

// applyPlacement sets the layer-shell anchors and margins of window.
func applyPlacement(window *gtk.Window, p Placement) {
	for edge, lsEdge := range layerEdges {
		layershell.SetAnchor(window, lsEdge, p.Anchors[edge])
		layershell.SetMargin(window, lsEdge, p.Margins[edge])
	}
}
