package annotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument("map-1")

	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Equal(t, "map-1", doc.MapID)
	require.Len(t, doc.Layers, 1)
	assert.Equal(t, DefaultLayerName, doc.Layers[0].Name)
	assert.True(t, doc.Layers[0].Visible)
	assert.Empty(t, doc.Layers[0].Annotations)
	assert.Equal(t, doc.Layers[0].ID, doc.ActiveLayerID)
	assert.NoError(t, doc.Validate())
}

func TestValidateRejectsBrokenDocuments(t *testing.T) {
	doc := NewDocument("map-1")
	doc.Layers = nil
	assert.Error(t, doc.Validate())

	doc = NewDocument("map-1")
	doc.ActiveLayerID = "nope"
	assert.Error(t, doc.Validate())

	doc = NewDocument("map-1")
	doc.Layers = append(doc.Layers, NewLayer("LAYER 1", 1))
	assert.Error(t, doc.Validate(), "case-insensitive duplicate must fail")

	doc = NewDocument("map-1")
	doc.Layers[0].Visible = false
	assert.Error(t, doc.Validate())
}

func TestAnnotationJSONRoundTrip(t *testing.T) {
	text := NewText("depot", geometry.Point2D{X: 120, Y: 48}, 24, NewColorPair(0xff2196f3, false))
	drawing := NewDrawing([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 5}}, 4, NewColorPair(0xffe53935, true))

	doc := NewDocument("map-json")
	doc.Layers[0].AppendAnnotation(text)
	doc.Layers[0].AppendAnnotation(drawing)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"text"`)
	assert.Contains(t, string(data), `"kind":"drawing"`)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	require.NoError(t, back.Validate())
	require.Len(t, back.Layers[0].Annotations, 2)

	gotText := back.Layers[0].Annotations[0]
	require.Equal(t, KindText, gotText.Kind)
	assert.Equal(t, text.Text.ID, gotText.Text.ID)
	assert.Equal(t, "depot", gotText.Text.Content)
	assert.Equal(t, 24.0, gotText.Text.FontSize)
	assert.Equal(t, text.Text.Color, gotText.Text.Color)

	gotDrawing := back.Layers[0].Annotations[1]
	require.Equal(t, KindDrawing, gotDrawing.Kind)
	assert.Equal(t, drawing.Drawing.Points, gotDrawing.Drawing.Points)
	assert.Equal(t, 4.0, gotDrawing.Drawing.StrokeWidth)
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	var a Annotation
	err := json.Unmarshal([]byte(`{"kind":"sticker","id":"x"}`), &a)
	assert.Error(t, err)
}

func TestLayerCloneIsDeep(t *testing.T) {
	layer := NewLayer("Trail", 0)
	layer.AppendAnnotation(NewDrawing([]geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}, 3, ColorPair{}))

	dup := layer.Clone()
	assert.NotEqual(t, layer.ID, dup.ID)
	require.Len(t, dup.Annotations, 1)

	// Mutating the clone's points must not touch the original.
	dup.Annotations[0].Drawing.Points[0].X = 99
	assert.Equal(t, 1.0, layer.Annotations[0].Drawing.Points[0].X)
}

func TestLayerCloneAssignsFreshAnnotationIDs(t *testing.T) {
	layer := NewLayer("Trail", 0)
	layer.AppendAnnotation(NewText("cabin", geometry.Point2D{}, 16, ColorPair{}))
	layer.AppendAnnotation(NewDrawing([]geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}, 3, ColorPair{}))

	dup := layer.Clone()
	require.Len(t, dup.Annotations, 2)
	// Ids are unique across the document, so none may be shared with the
	// source layer.
	for i := range dup.Annotations {
		assert.NotEmpty(t, dup.Annotations[i].ID())
		assert.NotEqual(t, layer.Annotations[i].ID(), dup.Annotations[i].ID())
	}
	// Content carries over untouched.
	assert.Equal(t, "cabin", dup.Annotations[0].Text.Content)
	assert.Equal(t, layer.Annotations[1].Drawing.Points, dup.Annotations[1].Drawing.Points)
}

func TestLayerCopyPreservesIDs(t *testing.T) {
	layer := NewLayer("Trail", 0)
	layer.AppendAnnotation(NewText("cabin", geometry.Point2D{}, 16, ColorPair{}))

	snap := layer.Copy()
	assert.Equal(t, layer.ID, snap.ID)
	assert.Equal(t, layer.Annotations[0].ID(), snap.Annotations[0].ID())

	snap.Annotations[0].Text.Content = "changed"
	assert.Equal(t, "cabin", layer.Annotations[0].Text.Content)
}

func TestDocumentCloneIsDeepAndPreservesIDs(t *testing.T) {
	doc := NewDocument("map-2")
	doc.Layers[0].AppendAnnotation(NewText("a", geometry.Point2D{}, 16, ColorPair{}))

	snap := doc.Clone()
	assert.Equal(t, doc.ActiveLayerID, snap.ActiveLayerID)
	assert.Equal(t, doc.Layers[0].ID, snap.Layers[0].ID)

	snap.Layers[0].Annotations[0].Text.Content = "b"
	assert.Equal(t, "a", doc.Layers[0].Annotations[0].Text.Content)
}

func TestLayerAnnotationOps(t *testing.T) {
	layer := NewLayer("Notes", 0)
	a := NewText("one", geometry.Point2D{}, 16, ColorPair{})
	b := NewText("two", geometry.Point2D{}, 16, ColorPair{})
	layer.AppendAnnotation(a)
	layer.AppendAnnotation(b)

	assert.Equal(t, 0, layer.FindAnnotation(a.ID()))
	assert.Equal(t, -1, layer.FindAnnotation("missing"))

	moved := a.Clone()
	moved.Text.Position = geometry.Point2D{X: 5, Y: 5}
	assert.True(t, layer.ReplaceAnnotation(moved))
	assert.Equal(t, 5.0, layer.Annotations[0].Text.Position.X)

	assert.False(t, layer.RemoveAnnotation("missing"))
	assert.True(t, layer.RemoveAnnotation(a.ID()))
	require.Len(t, layer.Annotations, 1)
	assert.Equal(t, b.ID(), layer.Annotations[0].ID())
}
