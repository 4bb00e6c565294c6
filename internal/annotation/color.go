// Package annotation defines the persisted data model for map annotations:
// color pairs, text and drawing annotations, layers, and the per-map document.
package annotation

import "github.com/Alatreon/catamap-sub000/pkg/colorutil"

// ColorPair holds the light-mode and dark-mode rendering of a single
// user-chosen color, as 32-bit ARGB values. The pair is built once at
// creation time and both members are immutable afterwards.
type ColorPair struct {
	Light uint32 `json:"light"`
	Dark  uint32 `json:"dark"`
}

// NewColorPair builds a pair from a base color and the display mode active
// when the user picked it. The chosen color is kept for its own mode; the
// other mode gets the photometric inverse.
func NewColorPair(base uint32, darkMode bool) ColorPair {
	if darkMode {
		return ColorPair{Light: InvertColor(base), Dark: base}
	}
	return ColorPair{Light: base, Dark: InvertColor(base)}
}

// Color returns the member for the given display mode.
func (c ColorPair) Color(darkMode bool) uint32 {
	if darkMode {
		return c.Dark
	}
	return c.Light
}

// InvertColor returns the per-channel photometric inverse of an ARGB color.
// The alpha channel is preserved.
func InvertColor(c uint32) uint32 {
	return colorutil.Invert(c)
}
