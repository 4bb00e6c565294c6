package editor

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

// baseFaceHeight is the pixel height of the reference face used for
// measurement; widths scale linearly with the annotation font size.
const baseFaceHeight = 13.0

// MeasureText returns the width and height of a text annotation's content
// at the given font size, in image-space pixels. Multi-line content takes
// the widest line and stacks line heights.
func MeasureText(content string, fontSize float64) (w, h float64) {
	if content == "" || fontSize <= 0 {
		return 0, 0
	}

	face := basicfont.Face7x13
	scale := fontSize / baseFaceHeight

	lines := strings.Split(content, "\n")
	maxWidth := 0.0
	for _, line := range lines {
		lw := float64(font.MeasureString(face, line).Ceil())
		if lw > maxWidth {
			maxWidth = lw
		}
	}
	return maxWidth * scale, fontSize * float64(len(lines))
}

// textBounds returns the axis-aligned hit box of a text annotation,
// centered on its position.
func textBounds(t *annotation.Text) geometry.Rect {
	w, h := MeasureText(t.Content, t.FontSize)
	return geometry.CenteredRect(t.Position, w, h)
}
