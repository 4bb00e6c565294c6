package editor

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/internal/layers"
	"github.com/Alatreon/catamap-sub000/internal/store"
	"github.com/Alatreon/catamap-sub000/internal/tools"
	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

type fakeSurface struct {
	editInitials []string
	editCommit   func(content string)

	confirmContents []string
	confirmFn       func(confirmed bool)

	rejections []string
}

func (s *fakeSurface) EditText(initial string, commit func(content string)) {
	s.editInitials = append(s.editInitials, initial)
	s.editCommit = commit
}

func (s *fakeSurface) ConfirmDelete(content string, confirm func(confirmed bool)) {
	s.confirmContents = append(s.confirmContents, content)
	s.confirmFn = confirm
}

func (s *fakeSurface) RejectHit(layerName string) {
	s.rejections = append(s.rejections, layerName)
}

func newTestEditor(t *testing.T) (*Editor, *layers.Manager, *tools.State, *fakeSurface) {
	t.Helper()
	log := zerolog.Nop()
	st := store.New(t.TempDir(), log)
	t.Cleanup(func() { _ = st.Close() })

	mgr := layers.NewManager(st, log)
	_, err := mgr.Load("editor-test")
	require.NoError(t, err)

	state := tools.NewState(viper.New())
	surface := &fakeSurface{}
	ed := New(mgr, state, surface, func() bool { return false }, log)
	return ed, mgr, state, surface
}

func pt(x, y float64) geometry.Point2D { return geometry.NewPoint2D(x, y) }

// tap drives a down/up pair with no movement.
func tap(e *Editor, p geometry.Point2D) {
	e.PointerDown(p)
	e.PointerUp(p)
}

func activeAnnotations(t *testing.T, mgr *layers.Manager) []annotation.Annotation {
	t.Helper()
	layer := mgr.ActiveLayer()
	require.NotNil(t, layer)
	return layer.Annotations
}

func TestTapOnEmptySpaceCreatesText(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)
	state.SetColor(0xff1e88e5)

	tap(ed, pt(100, 100))
	require.Len(t, surface.editInitials, 1)
	assert.Equal(t, "", surface.editInitials[0])

	surface.editCommit("Summit cairn")

	anns := activeAnnotations(t, mgr)
	require.Len(t, anns, 1)
	require.Equal(t, annotation.KindText, anns[0].Kind)
	assert.Equal(t, "Summit cairn", anns[0].Text.Content)
	assert.Equal(t, pt(100, 100), anns[0].Text.Position)
	assert.Equal(t, uint32(0xff1e88e5), anns[0].Text.Color.Light)
	assert.Equal(t, state.TextSize(), anns[0].Text.FontSize)
}

func TestEmptyCommitOnNewTextIsNoOp(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(50, 50))
	require.NotNil(t, surface.editCommit)
	surface.editCommit("")

	assert.Empty(t, activeAnnotations(t, mgr))
}

func TestTapOnExistingTextOpensPrefilledEdit(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(200, 80))
	surface.editCommit("Old name")

	tap(ed, pt(200, 80))
	require.Len(t, surface.editInitials, 2)
	assert.Equal(t, "Old name", surface.editInitials[1])

	surface.editCommit("New name")
	anns := activeAnnotations(t, mgr)
	require.Len(t, anns, 1)
	assert.Equal(t, "New name", anns[0].Text.Content)
}

func TestEmptyCommitOnExistingTextDeletesIt(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(120, 40))
	surface.editCommit("temporary")
	require.Len(t, activeAnnotations(t, mgr), 1)

	tap(ed, pt(120, 40))
	surface.editCommit("")
	assert.Empty(t, activeAnnotations(t, mgr))
}

func TestEditRestampsColorAndSize(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(60, 60))
	surface.editCommit("label")

	state.SetColor(0xff43a047)
	state.SetTextSize(32)
	tap(ed, pt(60, 60))
	surface.editCommit("label")

	anns := activeAnnotations(t, mgr)
	require.Len(t, anns, 1)
	assert.Equal(t, uint32(0xff43a047), anns[0].Text.Color.Light)
	assert.Equal(t, 32.0, anns[0].Text.FontSize)
}

func TestDragMovesTextByDisplacement(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(100, 100))
	surface.editCommit("movable")

	// Grab slightly off-center and drag well past the threshold.
	ed.PointerDown(pt(102, 100))
	ed.PointerMove(pt(140, 130))

	preview, ok := ed.DragPreview()
	require.True(t, ok)
	assert.Equal(t, pt(138, 130), preview.Position)

	ed.PointerUp(pt(152, 160))

	anns := activeAnnotations(t, mgr)
	require.Len(t, anns, 1)
	assert.Equal(t, pt(150, 160), anns[0].Text.Position)
	// No edit dialog was opened for the drag.
	assert.Len(t, surface.editInitials, 1)
}

func TestSmallJitterStaysATap(t *testing.T) {
	ed, _, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(100, 100))
	surface.editCommit("steady")

	ed.PointerDown(pt(100, 100))
	ed.PointerMove(pt(104, 103))
	ed.PointerUp(pt(104, 103))

	require.Len(t, surface.editInitials, 2)
	assert.Equal(t, "steady", surface.editInitials[1])
}

func TestHitOnInactiveLayerIsRejected(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	state.SetTool(tools.ToolText)

	tap(ed, pt(100, 100))
	surface.editCommit("base note")
	baseLayer := mgr.ActiveLayer().Name

	_, err := mgr.AddLayer("Overlay")
	require.NoError(t, err)

	tap(ed, pt(100, 100))
	require.Len(t, surface.rejections, 1)
	assert.Equal(t, baseLayer, surface.rejections[0])
	// The rejected gesture neither opened an editor nor created anything.
	assert.Len(t, surface.editInitials, 1)
	assert.Empty(t, mgr.ActiveLayer().Annotations)
}

func TestHitTestPrefersTopmostLayerAndNewestAnnotation(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	base := mgr.ActiveLayer()
	color := annotation.NewColorPair(0xff000000, false)
	require.NoError(t, mgr.MutateLayer(base.ID, func(l *annotation.Layer) bool {
		l.AppendAnnotation(annotation.NewText("older", pt(100, 100), 16, color))
		l.AppendAnnotation(annotation.NewText("newer", pt(100, 100), 16, color))
		return true
	}))
	top, err := mgr.AddLayer("Top")
	require.NoError(t, err)
	require.NoError(t, mgr.MutateLayer(top.ID, func(l *annotation.Layer) bool {
		l.AppendAnnotation(annotation.NewText("topmost", pt(100, 100), 16, color))
		return true
	}))

	state.SetTool(tools.ToolText)
	tap(ed, pt(100, 100))
	require.Equal(t, []string{"topmost"}, surface.editInitials)
	surface.editCommit("topmost")

	// Hidden layers are transparent to hit-testing, and within a layer the
	// most recently added annotation wins.
	require.NoError(t, mgr.ToggleLayerVisibility(top.ID))
	require.NoError(t, mgr.SetActiveLayer(base.ID))
	tap(ed, pt(100, 100))
	require.Len(t, surface.editInitials, 2)
	assert.Equal(t, "newer", surface.editInitials[1])
}

func TestStrokeCaptureSimplifiesAndCommits(t *testing.T) {
	ed, mgr, state, _ := newTestEditor(t)
	state.SetTool(tools.ToolDrawing)
	state.SetStrokeWidth(6)

	ed.PointerDown(pt(0, 0))
	for x := 1.0; x < 100; x++ {
		ed.PointerMove(pt(x, 0.3))
	}
	ed.PointerMove(pt(100, 0))
	assert.NotEmpty(t, ed.InProgress())
	ed.PointerUp(pt(100, 0))

	anns := activeAnnotations(t, mgr)
	require.Len(t, anns, 1)
	require.Equal(t, annotation.KindDrawing, anns[0].Kind)
	d := anns[0].Drawing
	assert.Equal(t, 6.0, d.StrokeWidth)
	// Near-collinear capture collapses to its endpoints.
	assert.Less(t, len(d.Points), 5)
	assert.Equal(t, pt(0, 0), d.Points[0])
	assert.Equal(t, pt(100, 0), d.Points[len(d.Points)-1])
	assert.Nil(t, ed.InProgress())
}

func TestStrokeCaptureIsUnfiltered(t *testing.T) {
	ed, _, state, _ := newTestEditor(t)
	state.SetTool(tools.ToolDrawing)

	// Repeated and near-identical samples are all kept in the raw
	// polyline; only the committed stroke is simplified.
	ed.PointerDown(pt(10, 10))
	ed.PointerMove(pt(10, 10))
	ed.PointerMove(pt(10, 10))
	ed.PointerMove(pt(10.1, 10))

	require.Len(t, ed.InProgress(), 4)
	ed.PointerUp(pt(10.1, 10))
}

func TestStationaryStrokeIsDiscarded(t *testing.T) {
	ed, mgr, state, _ := newTestEditor(t)
	state.SetTool(tools.ToolDrawing)

	ed.PointerDown(pt(40, 40))
	ed.PointerUp(pt(40, 40))

	assert.Empty(t, activeAnnotations(t, mgr))
}

func TestToolSwitchDiscardsStrokeInProgress(t *testing.T) {
	ed, mgr, state, _ := newTestEditor(t)
	state.SetTool(tools.ToolDrawing)

	ed.PointerDown(pt(0, 0))
	ed.PointerMove(pt(20, 20))
	state.SetTool(tools.ToolText)
	assert.Nil(t, ed.InProgress())

	state.SetTool(tools.ToolDrawing)
	ed.PointerUp(pt(40, 40))

	assert.Empty(t, activeAnnotations(t, mgr))
}

func TestEditTargetOverridesActiveLayer(t *testing.T) {
	ed, mgr, state, surface := newTestEditor(t)
	base := mgr.ActiveLayer()
	_, err := mgr.AddLayer("Scratch")
	require.NoError(t, err)

	state.SetEditTarget(base.ID, base.Name)
	state.SetTool(tools.ToolText)

	tap(ed, pt(10, 10))
	surface.editCommit("routed to base")

	baseLayer := mgr.FindLayer(base.ID)
	require.NotNil(t, baseLayer)
	require.Len(t, baseLayer.Annotations, 1)
	assert.Empty(t, mgr.ActiveLayer().Annotations)
}
