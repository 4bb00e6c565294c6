// Package colorutil provides ARGB color helpers shared across the
// annotation engine. Colors are packed 0xAARRGGBB, the layout annotations
// are stored and rendered with.
package colorutil

// Palette holds the annotation colors offered by pickers.
var Palette = []uint32{
	0xffe53935, // red
	0xfffb8c00, // orange
	0xfffdd835, // yellow
	0xff43a047, // green
	0xff1e88e5, // blue
	0xff8e24aa, // purple
	0xff6d4c41, // brown
	0xff000000, // black
	0xffffffff, // white
}

// Unpack splits a packed color into its channels.
func Unpack(c uint32) (a, r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Pack assembles channels into a packed color.
func Pack(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Invert flips each color channel, leaving alpha untouched.
func Invert(c uint32) uint32 {
	a, r, g, b := Unpack(c)
	return Pack(a, 255-r, 255-g, 255-b)
}

// Luminance returns the relative luminance of a color in [0, 1], ignoring
// alpha.
func Luminance(c uint32) float64 {
	_, r, g, b := Unpack(c)
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255.0
}

// ContrastOn returns opaque black or white, whichever reads better on the
// given background color.
func ContrastOn(background uint32) uint32 {
	if Luminance(background) > 0.5 {
		return 0xff000000
	}
	return 0xffffffff
}
