package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ocf/paper-applet/internal/config"
)

func TestPlacementFor(t *testing.T) {
	tests := []struct {
		position string
		anchors  []Edge
		margins  map[Edge]int
	}{
		{
			position: "top-right",
			anchors:  []Edge{EdgeTop, EdgeRight},
			margins:  map[Edge]int{EdgeTop: 20, EdgeRight: 10},
		},
		{
			position: "top-left",
			anchors:  []Edge{EdgeTop, EdgeLeft},
			margins:  map[Edge]int{EdgeTop: 20, EdgeLeft: 10},
		},
		{
			position: "top-center",
			anchors:  []Edge{EdgeTop},
			margins:  map[Edge]int{EdgeTop: 20},
		},
		{
			position: "bottom-right",
			anchors:  []Edge{EdgeBottom, EdgeRight},
			margins:  map[Edge]int{EdgeBottom: 20, EdgeRight: 10},
		},
		{
			position: "bottom-left",
			anchors:  []Edge{EdgeBottom, EdgeLeft},
			margins:  map[Edge]int{EdgeBottom: 20, EdgeLeft: 10},
		},
		{
			position: "bottom-center",
			anchors:  []Edge{EdgeBottom},
			margins:  map[Edge]int{EdgeBottom: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			p := PlacementFor(config.PanelConfig{Position: tt.position, OffsetX: 10, OffsetY: 20})

			var anchored []Edge
			for _, edge := range []Edge{EdgeTop, EdgeBottom, EdgeLeft, EdgeRight} {
				if p.Anchors[edge] {
					anchored = append(anchored, edge)
				}
			}
			assert.ElementsMatch(t, tt.anchors, anchored)
			assert.Equal(t, tt.margins, p.Margins)
		})
	}
}
