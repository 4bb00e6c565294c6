package annotation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alatreon/catamap-sub000/pkg/geometry"
)

// Annotation kinds as stored in the document.
const (
	KindText    = "text"
	KindDrawing = "drawing"
)

// Annotation is a single mark on a layer: either a text label or a freehand
// drawing, discriminated by Kind. Exactly one of Text/Drawing is set.
type Annotation struct {
	Kind    string
	Text    *Text
	Drawing *Drawing
}

// Text is a text label placed at an image-space position. The position is
// the center of the rendered text box.
type Text struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Position  geometry.Point2D `json:"position"`
	FontSize  float64          `json:"fontSize"`
	Color     ColorPair        `json:"color"`
	CreatedAt int64            `json:"createdAt"`
}

// Drawing is a freehand stroke as an ordered sequence of image-space points.
type Drawing struct {
	ID          string             `json:"id"`
	Points      []geometry.Point2D `json:"points"`
	StrokeWidth float64            `json:"strokeWidth"`
	Color       ColorPair          `json:"color"`
	CreatedAt   int64              `json:"createdAt"`
}

// NewText creates a text annotation with a fresh id.
func NewText(content string, pos geometry.Point2D, fontSize float64, color ColorPair) Annotation {
	return Annotation{
		Kind: KindText,
		Text: &Text{
			ID:        uuid.NewString(),
			Content:   content,
			Position:  pos,
			FontSize:  fontSize,
			Color:     color,
			CreatedAt: time.Now().UnixMilli(),
		},
	}
}

// NewDrawing creates a drawing annotation with a fresh id. The point slice
// is owned by the annotation afterwards.
func NewDrawing(points []geometry.Point2D, strokeWidth float64, color ColorPair) Annotation {
	return Annotation{
		Kind: KindDrawing,
		Drawing: &Drawing{
			ID:          uuid.NewString(),
			Points:      points,
			StrokeWidth: strokeWidth,
			Color:       color,
			CreatedAt:   time.Now().UnixMilli(),
		},
	}
}

// ID returns the id of whichever variant is set.
func (a Annotation) ID() string {
	switch a.Kind {
	case KindText:
		return a.Text.ID
	case KindDrawing:
		return a.Drawing.ID
	}
	return ""
}

// Clone returns a deep copy, keeping the same id.
func (a Annotation) Clone() Annotation {
	out := Annotation{Kind: a.Kind}
	if a.Text != nil {
		t := *a.Text
		out.Text = &t
	}
	if a.Drawing != nil {
		d := *a.Drawing
		d.Points = make([]geometry.Point2D, len(a.Drawing.Points))
		copy(d.Points, a.Drawing.Points)
		out.Drawing = &d
	}
	return out
}

// annotationJSON is the on-disk shape: the variant fields inlined next to
// the kind tag.
type annotationJSON struct {
	Kind string `json:"kind"`

	ID        string    `json:"id"`
	Color     ColorPair `json:"color"`
	CreatedAt int64     `json:"createdAt"`

	// Text fields
	Content  string            `json:"content,omitempty"`
	Position *geometry.Point2D `json:"position,omitempty"`
	FontSize float64           `json:"fontSize,omitempty"`

	// Drawing fields
	Points      []geometry.Point2D `json:"points,omitempty"`
	StrokeWidth float64            `json:"strokeWidth,omitempty"`
}

// MarshalJSON encodes the annotation with its kind tag.
func (a Annotation) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindText:
		if a.Text == nil {
			return nil, fmt.Errorf("text annotation with nil payload")
		}
		pos := a.Text.Position
		return json.Marshal(annotationJSON{
			Kind:      KindText,
			ID:        a.Text.ID,
			Color:     a.Text.Color,
			CreatedAt: a.Text.CreatedAt,
			Content:   a.Text.Content,
			Position:  &pos,
			FontSize:  a.Text.FontSize,
		})
	case KindDrawing:
		if a.Drawing == nil {
			return nil, fmt.Errorf("drawing annotation with nil payload")
		}
		return json.Marshal(annotationJSON{
			Kind:        KindDrawing,
			ID:          a.Drawing.ID,
			Color:       a.Drawing.Color,
			CreatedAt:   a.Drawing.CreatedAt,
			Points:      a.Drawing.Points,
			StrokeWidth: a.Drawing.StrokeWidth,
		})
	}
	return nil, fmt.Errorf("unknown annotation kind %q", a.Kind)
}

// UnmarshalJSON decodes a kind-tagged annotation.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var raw annotationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Kind {
	case KindText:
		var pos geometry.Point2D
		if raw.Position != nil {
			pos = *raw.Position
		}
		*a = Annotation{
			Kind: KindText,
			Text: &Text{
				ID:        raw.ID,
				Content:   raw.Content,
				Position:  pos,
				FontSize:  raw.FontSize,
				Color:     raw.Color,
				CreatedAt: raw.CreatedAt,
			},
		}
	case KindDrawing:
		*a = Annotation{
			Kind: KindDrawing,
			Drawing: &Drawing{
				ID:          raw.ID,
				Points:      raw.Points,
				StrokeWidth: raw.StrokeWidth,
				Color:       raw.Color,
				CreatedAt:   raw.CreatedAt,
			},
		}
	default:
		return fmt.Errorf("unknown annotation kind %q", raw.Kind)
	}
	return nil
}
