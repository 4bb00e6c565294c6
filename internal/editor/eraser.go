package editor

import (
	"sort"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

// erase processes one eraser sample. A text annotation under the point is
// handled first: on the target layer it opens a delete confirmation and
// suppresses point erasure for the rest of the gesture, on any other layer
// the hit is rejected once and erasure continues. Otherwise drawing points
// on the target layer within the eraser radius are marked for removal.
func (e *Editor) erase(p geometry.Point2D) {
	if e.textHandled {
		return
	}

	if layer, hit, ok := e.hitText(p); ok {
		if layer.ID == e.targetLayerID() {
			e.textHandled = true
			layerID, textID, content := layer.ID, hit.ID, hit.Content
			e.surface.ConfirmDelete(content, func(confirmed bool) {
				if !confirmed {
					return
				}
				err := e.manager.MutateLayer(layerID, func(l *annotation.Layer) bool {
					return l.RemoveAnnotation(textID)
				})
				if err != nil {
					e.log.Warn().Err(err).Str("layer_id", layerID).Msg("text delete did not apply")
				}
			})
			return
		}
		if !e.rejected {
			e.rejected = true
			e.surface.RejectHit(layer.Name)
		}
	}

	target := e.manager.FindLayer(e.targetLayerID())
	if target == nil {
		return
	}
	radius := e.tools.EraserSize()
	for _, a := range target.Annotations {
		if a.Kind != annotation.KindDrawing {
			continue
		}
		for i, pt := range a.Drawing.Points {
			if p.Distance(pt) > radius {
				continue
			}
			if e.marks[a.Drawing.ID] == nil {
				e.marks[a.Drawing.ID] = make(map[int]bool)
			}
			e.marks[a.Drawing.ID][i] = true
		}
	}
}

// finishErase applies all marked removals: each touched drawing is split
// into the maximal surviving runs and replaced in place, all within a
// single mutation so the document persists once.
func (e *Editor) finishErase() {
	if !e.erasing {
		return
	}
	marks := e.marks
	handled := e.textHandled
	e.erasing = false
	e.marks = nil
	e.textHandled = false
	e.rejected = false

	if handled || len(marks) == 0 {
		return
	}

	layerID := e.targetLayerID()
	err := e.manager.MutateLayer(layerID, func(l *annotation.Layer) bool {
		changed := false
		rebuilt := make([]annotation.Annotation, 0, len(l.Annotations))
		for _, a := range l.Annotations {
			removed := marks[a.ID()]
			if a.Kind != annotation.KindDrawing || len(removed) == 0 {
				rebuilt = append(rebuilt, a)
				continue
			}
			changed = true
			for _, run := range SplitDrawing(a.Drawing.Points, removed) {
				rebuilt = append(rebuilt, annotation.NewDrawing(run, a.Drawing.StrokeWidth, a.Drawing.Color))
			}
		}
		if changed {
			l.Annotations = rebuilt
		}
		return changed
	})
	if err != nil {
		e.log.Warn().Err(err).Str("layer_id", layerID).Msg("erase did not apply")
	}
}

// SplitDrawing partitions a point sequence into the maximal runs of
// consecutive points that survive removal. Runs shorter than two points
// are dropped, so erasing can only ever yield renderable strokes.
func SplitDrawing(points []geometry.Point2D, removed map[int]bool) [][]geometry.Point2D {
	var runs [][]geometry.Point2D
	var run []geometry.Point2D
	for i, p := range points {
		if removed[i] {
			if len(run) >= 2 {
				runs = append(runs, run)
			}
			run = nil
			continue
		}
		run = append(run, p)
	}
	if len(run) >= 2 {
		runs = append(runs, run)
	}
	return runs
}

// PendingRemovals reports the points currently marked for erasure, keyed
// by drawing id with indices in ascending order, for rendering feedback
// during the gesture.
func (e *Editor) PendingRemovals() map[string][]int {
	if len(e.marks) == 0 {
		return nil
	}
	out := make(map[string][]int, len(e.marks))
	for id, set := range e.marks {
		idx := make([]int, 0, len(set))
		for i := range set {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		out[id] = idx
	}
	return out
}

// CursorRadius returns the live eraser cursor, for rendering. ok is false
// outside an eraser gesture.
func (e *Editor) CursorRadius() (center geometry.Point2D, radius float64, ok bool) {
	if !e.erasing {
		return geometry.Point2D{}, 0, false
	}
	return e.cursor, e.tools.EraserSize(), true
}
