// Package theme provides CSS styling for the panel chip.
package theme
