package editor

import (
	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

// appendStrokePoint records one raw capture sample. No distance or
// duplicate filtering; the committed stroke is simplified on finish.
func (e *Editor) appendStrokePoint(p geometry.Point2D) {
	e.stroke = append(e.stroke, p)
}

// finishStroke simplifies the captured points and commits them as a new
// drawing on the target layer. Gestures that produced fewer than two
// samples are discarded.
func (e *Editor) finishStroke() {
	if !e.capturing {
		return
	}
	points := e.stroke
	e.capturing = false
	e.stroke = nil

	if len(points) < 2 {
		return
	}
	simplified := geometry.Simplify(points, SimplifyEpsilon)

	layerID := e.targetLayerID()
	color := annotation.NewColorPair(e.tools.Color(), e.darkMode())
	a := annotation.NewDrawing(simplified, e.tools.StrokeWidth(), color)
	err := e.manager.MutateLayer(layerID, func(l *annotation.Layer) bool {
		l.AppendAnnotation(a)
		return true
	})
	if err != nil {
		e.log.Warn().Err(err).Str("layer_id", layerID).Msg("stroke commit did not apply")
	}
}

// InProgress returns a copy of the raw stroke being captured, for live
// rendering. Nil when no stroke is in progress.
func (e *Editor) InProgress() []geometry.Point2D {
	if !e.capturing {
		return nil
	}
	out := make([]geometry.Point2D, len(e.stroke))
	copy(out, e.stroke)
	return out
}
