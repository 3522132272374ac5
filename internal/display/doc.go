// Package display implements the GTK4/libadwaita panel chip: a borderless
// layer-shell window holding one clickable label.
package display
