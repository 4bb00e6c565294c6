// Package tools holds the active annotation tool and its parameters. Color,
// text size, stroke width, and eraser radius are user preferences persisted
// across sessions, independent of any map document.
package tools

import (
	"github.com/spf13/viper"

	"github.com/Alatreon/catamap-sub000/pkg/colorutil"
)

// Tool identifies the active annotation tool.
type Tool int

const (
	ToolNone Tool = iota
	ToolText
	ToolDrawing
	ToolEraser
)

// String returns the tool name used in logs and preferences.
func (t Tool) String() string {
	switch t {
	case ToolText:
		return "text"
	case ToolDrawing:
		return "drawing"
	case ToolEraser:
		return "eraser"
	}
	return "none"
}

// TextSizes are the allowed text annotation sizes; requested sizes snap to
// the nearest entry.
var TextSizes = []float64{12, 16, 24, 32, 48}

// Palette returns the swatches color pickers offer. The slice is shared;
// callers must not mutate it.
func Palette() []uint32 {
	return colorutil.Palette
}

// Parameter bounds and defaults.
const (
	MinStrokeWidth = 1.0
	MaxStrokeWidth = 32.0
	MinEraserSize  = 4.0
	MaxEraserSize  = 128.0

	DefaultColor       = uint32(0xffe53935)
	DefaultTextSize    = 16.0
	DefaultStrokeWidth = 4.0
	DefaultEraserSize  = 24.0
)

// Preference keys.
const (
	prefColor       = "annotate.color"
	prefTextSize    = "annotate.textSize"
	prefStrokeWidth = "annotate.strokeWidth"
	prefEraserSize  = "annotate.eraserSize"
)

// State is the tool-state component. The active tool and the edit-target
// layer are session state; the numeric parameters round-trip through the
// preference store. Not internally synchronized: confine to the interaction
// goroutine like the layer manager.
type State struct {
	prefs *viper.Viper

	tool        Tool
	color       uint32
	textSize    float64
	strokeWidth float64
	eraserSize  float64

	// Layer designated for new edits; tracked separately from the layer
	// manager's active id so open edit overlays keep a stable target.
	editTargetID   string
	editTargetName string

	toolListeners   []func(previous, current Tool)
	colorListeners  []func(previous, current uint32)
	sizeListeners   []func(previous, current float64)
	widthListeners  []func(previous, current float64)
	eraserListeners []func(previous, current float64)
}

// NewState creates a tool state backed by the given preference store. Pass
// a fresh viper instance configured with SetConfigFile; New reads whatever
// is already loaded in it and falls back to defaults.
func NewState(prefs *viper.Viper) *State {
	prefs.SetDefault(prefColor, DefaultColor)
	prefs.SetDefault(prefTextSize, DefaultTextSize)
	prefs.SetDefault(prefStrokeWidth, DefaultStrokeWidth)
	prefs.SetDefault(prefEraserSize, DefaultEraserSize)

	return &State{
		prefs:       prefs,
		tool:        ToolNone,
		color:       prefs.GetUint32(prefColor),
		textSize:    SnapTextSize(prefs.GetFloat64(prefTextSize)),
		strokeWidth: clamp(prefs.GetFloat64(prefStrokeWidth), MinStrokeWidth, MaxStrokeWidth),
		eraserSize:  clamp(prefs.GetFloat64(prefEraserSize), MinEraserSize, MaxEraserSize),
	}
}

// persist writes the preference file, ignoring write failures (preferences
// are best-effort; the in-memory value is already updated).
func (s *State) persist(key string, value any) {
	s.prefs.Set(key, value)
	_ = s.prefs.WriteConfig()
}

// Observer registration. Callbacks fire synchronously on the mutating
// goroutine with the old and new value.

func (s *State) OnToolChanged(fn func(previous, current Tool)) {
	s.toolListeners = append(s.toolListeners, fn)
}

func (s *State) OnColorChanged(fn func(previous, current uint32)) {
	s.colorListeners = append(s.colorListeners, fn)
}

func (s *State) OnTextSizeChanged(fn func(previous, current float64)) {
	s.sizeListeners = append(s.sizeListeners, fn)
}

func (s *State) OnStrokeWidthChanged(fn func(previous, current float64)) {
	s.widthListeners = append(s.widthListeners, fn)
}

func (s *State) OnEraserSizeChanged(fn func(previous, current float64)) {
	s.eraserListeners = append(s.eraserListeners, fn)
}

// Tool returns the active tool.
func (s *State) Tool() Tool { return s.tool }

// SetTool switches tools. Selecting the already-active tool deactivates it;
// at most one tool is active at a time.
func (s *State) SetTool(tool Tool) {
	previous := s.tool
	if tool == s.tool {
		s.tool = ToolNone
	} else {
		s.tool = tool
	}
	if s.tool == previous {
		return
	}
	for _, fn := range s.toolListeners {
		fn(previous, s.tool)
	}
}

// Color returns the active base color (ARGB).
func (s *State) Color() uint32 { return s.color }

// SetColor sets the active base color.
func (s *State) SetColor(c uint32) {
	if c == s.color {
		return
	}
	previous := s.color
	s.color = c
	s.persist(prefColor, c)
	for _, fn := range s.colorListeners {
		fn(previous, c)
	}
}

// TextSize returns the active text size.
func (s *State) TextSize() float64 { return s.textSize }

// SetTextSize snaps the requested size to the nearest allowed value.
func (s *State) SetTextSize(size float64) {
	size = SnapTextSize(size)
	if size == s.textSize {
		return
	}
	previous := s.textSize
	s.textSize = size
	s.persist(prefTextSize, size)
	for _, fn := range s.sizeListeners {
		fn(previous, size)
	}
}

// StrokeWidth returns the active stroke width.
func (s *State) StrokeWidth() float64 { return s.strokeWidth }

// SetStrokeWidth clamps the width to the allowed range.
func (s *State) SetStrokeWidth(width float64) {
	width = clamp(width, MinStrokeWidth, MaxStrokeWidth)
	if width == s.strokeWidth {
		return
	}
	previous := s.strokeWidth
	s.strokeWidth = width
	s.persist(prefStrokeWidth, width)
	for _, fn := range s.widthListeners {
		fn(previous, width)
	}
}

// EraserSize returns the eraser cursor radius.
func (s *State) EraserSize() float64 { return s.eraserSize }

// SetEraserSize clamps the radius to the allowed range.
func (s *State) SetEraserSize(radius float64) {
	radius = clamp(radius, MinEraserSize, MaxEraserSize)
	if radius == s.eraserSize {
		return
	}
	previous := s.eraserSize
	s.eraserSize = radius
	s.persist(prefEraserSize, radius)
	for _, fn := range s.eraserListeners {
		fn(previous, radius)
	}
}

// EditTarget returns the id and name of the layer designated for new edits.
func (s *State) EditTarget() (id, name string) {
	return s.editTargetID, s.editTargetName
}

// EditTargetID returns just the designated layer id.
func (s *State) EditTargetID() string { return s.editTargetID }

// SetEditTarget records the layer new edits are written to.
func (s *State) SetEditTarget(id, name string) {
	s.editTargetID = id
	s.editTargetName = name
}

// SnapTextSize returns the allowed text size nearest to the request.
func SnapTextSize(size float64) float64 {
	best := TextSizes[0]
	bestDist := abs(size - best)
	for _, allowed := range TextSizes[1:] {
		if d := abs(size - allowed); d < bestDist {
			best = allowed
			bestDist = d
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
