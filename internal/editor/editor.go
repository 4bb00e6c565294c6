// Package editor translates pointer gestures into annotation edits. It is
// the interaction layer between an input surface (already mapped to image
// space) and the layer manager: text placement, dragging and editing,
// freehand stroke capture with simplification, and point erasure with
// stroke splitting.
package editor

import (
	"github.com/rs/zerolog"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/internal/layers"
	"github.com/Alatreon/catamap-sub000/internal/tools"
	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

const (
	// DragThreshold is how far a press on a text annotation must travel
	// before it becomes a drag rather than a tap.
	DragThreshold = 10.0

	// SimplifyEpsilon is the tolerance passed to stroke simplification
	// when a freehand drawing is finalized.
	SimplifyEpsilon = 2.0
)

// Surface is the UI the editor talks back to. Implementations present the
// dialog and invoke the callback when the user is done; the callback must
// run on the interaction goroutine.
type Surface interface {
	// EditText opens a text entry pre-filled with initial and reports the
	// final content through commit.
	EditText(initial string, commit func(content string))
	// ConfirmDelete asks whether the text with the given content should be
	// removed.
	ConfirmDelete(content string, confirm func(confirmed bool))
	// RejectHit tells the user the annotation they touched lives on a
	// layer other than the one being edited.
	RejectHit(layerName string)
}

type textPhase int

const (
	textIdle textPhase = iota
	textPressEmpty
	textWaiting
	textDragging
	textRejected
)

// Editor consumes pointer events for the currently selected tool. All
// methods must be called from the interaction goroutine.
type Editor struct {
	manager  *layers.Manager
	tools    *tools.State
	surface  Surface
	darkMode func() bool
	log      zerolog.Logger

	// text gesture
	phase      textPhase
	hitLayerID string
	hitTextID  string
	pressed    geometry.Point2D
	current    geometry.Point2D

	// drawing gesture
	capturing bool
	stroke    []geometry.Point2D

	// eraser gesture
	erasing     bool
	marks       map[string]map[int]bool
	textHandled bool
	rejected    bool
	cursor      geometry.Point2D
}

// New creates an editor bound to a manager, tool state and surface.
// darkMode reports the presentation mode used when stamping colors onto
// new annotations. Switching tools discards any gesture in progress.
func New(manager *layers.Manager, st *tools.State, surface Surface, darkMode func() bool, log zerolog.Logger) *Editor {
	e := &Editor{
		manager:  manager,
		tools:    st,
		surface:  surface,
		darkMode: darkMode,
		log:      log,
	}
	st.OnToolChanged(func(_, _ tools.Tool) {
		e.reset()
	})
	return e
}

// reset abandons any gesture in progress without committing anything.
func (e *Editor) reset() {
	e.phase = textIdle
	e.hitLayerID = ""
	e.hitTextID = ""
	e.capturing = false
	e.stroke = nil
	e.erasing = false
	e.marks = nil
	e.textHandled = false
	e.rejected = false
}

// PointerDown begins a gesture at an image-space point.
func (e *Editor) PointerDown(p geometry.Point2D) {
	switch e.tools.Tool() {
	case tools.ToolText:
		e.textDown(p)
	case tools.ToolDrawing:
		e.capturing = true
		e.stroke = []geometry.Point2D{p}
	case tools.ToolEraser:
		e.erasing = true
		e.marks = make(map[string]map[int]bool)
		e.textHandled = false
		e.rejected = false
		e.cursor = p
		e.erase(p)
	}
}

// PointerMove continues the gesture.
func (e *Editor) PointerMove(p geometry.Point2D) {
	switch e.tools.Tool() {
	case tools.ToolText:
		e.textMove(p)
	case tools.ToolDrawing:
		if e.capturing {
			e.appendStrokePoint(p)
		}
	case tools.ToolEraser:
		if e.erasing {
			e.cursor = p
			e.erase(p)
		}
	}
}

// PointerUp finishes the gesture.
func (e *Editor) PointerUp(p geometry.Point2D) {
	switch e.tools.Tool() {
	case tools.ToolText:
		e.textUp(p)
	case tools.ToolDrawing:
		e.finishStroke()
	case tools.ToolEraser:
		e.finishErase()
	}
}

// targetLayerID is the layer annotation edits are addressed to: the tool
// state's edit target when set, otherwise the manager's active layer.
func (e *Editor) targetLayerID() string {
	if id := e.tools.EditTargetID(); id != "" {
		return id
	}
	return e.manager.ActiveLayerID()
}

// ---- text tool ----

func (e *Editor) textDown(p geometry.Point2D) {
	e.pressed = p
	e.current = p

	layer, hit, ok := e.hitText(p)
	if !ok {
		e.phase = textPressEmpty
		return
	}
	if layer.ID != e.targetLayerID() {
		e.surface.RejectHit(layer.Name)
		e.phase = textRejected
		return
	}
	e.phase = textWaiting
	e.hitLayerID = layer.ID
	e.hitTextID = hit.ID
}

func (e *Editor) textMove(p geometry.Point2D) {
	switch e.phase {
	case textWaiting:
		if p.Distance(e.pressed) > DragThreshold {
			e.phase = textDragging
			e.current = p
		}
	case textDragging:
		e.current = p
	}
}

func (e *Editor) textUp(p geometry.Point2D) {
	phase := e.phase
	pressed := e.pressed
	layerID, textID := e.hitLayerID, e.hitTextID

	e.phase = textIdle
	e.hitLayerID = ""
	e.hitTextID = ""

	switch phase {
	case textPressEmpty:
		e.surface.EditText("", func(content string) {
			e.createText(content, pressed)
		})
	case textWaiting:
		t := e.findText(layerID, textID)
		if t == nil {
			return
		}
		initial := t.Content
		e.surface.EditText(initial, func(content string) {
			e.commitTextEdit(layerID, textID, content)
		})
	case textDragging:
		delta := p.Sub(pressed)
		err := e.manager.MutateLayer(layerID, func(l *annotation.Layer) bool {
			i := l.FindAnnotation(textID)
			if i < 0 || l.Annotations[i].Kind != annotation.KindText {
				return false
			}
			l.Annotations[i].Text.Position = l.Annotations[i].Text.Position.Add(delta)
			return true
		})
		if err != nil {
			e.log.Warn().Err(err).Str("layer_id", layerID).Msg("text drag did not apply")
		}
	}
}

// createText adds a new text annotation at the press point. Empty content
// is a no-op.
func (e *Editor) createText(content string, pos geometry.Point2D) {
	if content == "" {
		return
	}
	layerID := e.targetLayerID()
	color := annotation.NewColorPair(e.tools.Color(), e.darkMode())
	a := annotation.NewText(content, pos, e.tools.TextSize(), color)
	err := e.manager.MutateLayer(layerID, func(l *annotation.Layer) bool {
		l.AppendAnnotation(a)
		return true
	})
	if err != nil {
		e.log.Warn().Err(err).Str("layer_id", layerID).Msg("text create did not apply")
	}
}

// commitTextEdit applies the result of editing an existing annotation:
// empty content removes it, anything else replaces content, size and color
// from the current tool settings.
func (e *Editor) commitTextEdit(layerID, textID, content string) {
	err := e.manager.MutateLayer(layerID, func(l *annotation.Layer) bool {
		if content == "" {
			return l.RemoveAnnotation(textID)
		}
		i := l.FindAnnotation(textID)
		if i < 0 || l.Annotations[i].Kind != annotation.KindText {
			return false
		}
		t := l.Annotations[i].Text
		t.Content = content
		t.FontSize = e.tools.TextSize()
		t.Color = annotation.NewColorPair(e.tools.Color(), e.darkMode())
		return true
	})
	if err != nil {
		e.log.Warn().Err(err).Str("layer_id", layerID).Msg("text edit did not apply")
	}
}

func (e *Editor) findText(layerID, textID string) *annotation.Text {
	l := e.manager.FindLayer(layerID)
	if l == nil {
		return nil
	}
	i := l.FindAnnotation(textID)
	if i < 0 || l.Annotations[i].Kind != annotation.KindText {
		return nil
	}
	return l.Annotations[i].Text
}

// DragPreview returns a copy of the dragged text annotation displaced to
// the current pointer position, for rendering while the drag is live.
func (e *Editor) DragPreview() (annotation.Text, bool) {
	if e.phase != textDragging {
		return annotation.Text{}, false
	}
	t := e.findText(e.hitLayerID, e.hitTextID)
	if t == nil {
		return annotation.Text{}, false
	}
	preview := *t
	preview.Position = t.Position.Add(e.current.Sub(e.pressed))
	return preview, true
}
