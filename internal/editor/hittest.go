package editor

import (
	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

// hitText finds the text annotation under a point. Layers are probed from
// topmost paint order down, skipping hidden layers; within a layer the
// most recently added annotation wins. Returns the owning layer and the
// annotation, or ok=false when nothing is under the point.
func (e *Editor) hitText(p geometry.Point2D) (annotation.Layer, *annotation.Text, bool) {
	ls := e.manager.Layers()
	for li := len(ls) - 1; li >= 0; li-- {
		if !ls[li].Visible {
			continue
		}
		for ai := len(ls[li].Annotations) - 1; ai >= 0; ai-- {
			a := ls[li].Annotations[ai]
			if a.Kind != annotation.KindText {
				continue
			}
			if textBounds(a.Text).Contains(p) {
				return ls[li], a.Text, true
			}
		}
	}
	return annotation.Layer{}, nil, false
}
