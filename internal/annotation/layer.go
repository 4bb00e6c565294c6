package annotation

import (
	"github.com/google/uuid"
)

// Layer is a named, ordered, independently visible bucket of annotations.
// A layer owns its annotations exclusively.
type Layer struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Visible     bool         `json:"isVisible"`
	ZIndex      int          `json:"zIndex"`
	Annotations []Annotation `json:"annotations"`
}

// NewLayer creates an empty visible layer.
func NewLayer(name string, zIndex int) Layer {
	return Layer{
		ID:          uuid.NewString(),
		Name:        name,
		Visible:     true,
		ZIndex:      zIndex,
		Annotations: make([]Annotation, 0),
	}
}

// Clone returns a deep copy under new ids throughout. Annotation ids are
// unique across the whole document, so a duplicated layer must not share
// them with its source.
func (l Layer) Clone() Layer {
	out := l.Copy()
	out.ID = uuid.NewString()
	for i := range out.Annotations {
		a := &out.Annotations[i]
		switch a.Kind {
		case KindText:
			a.Text.ID = uuid.NewString()
		case KindDrawing:
			a.Drawing.ID = uuid.NewString()
		}
	}
	return out
}

// Copy duplicates the layer including every id, for document snapshots.
func (l Layer) Copy() Layer {
	out := l
	out.Annotations = make([]Annotation, len(l.Annotations))
	for i, a := range l.Annotations {
		out.Annotations[i] = a.Clone()
	}
	return out
}

// FindAnnotation returns the index of the annotation with the given id, or -1.
func (l Layer) FindAnnotation(id string) int {
	for i, a := range l.Annotations {
		if a.ID() == id {
			return i
		}
	}
	return -1
}

// AppendAnnotation adds an annotation to the end of the layer.
func (l *Layer) AppendAnnotation(a Annotation) {
	l.Annotations = append(l.Annotations, a)
}

// ReplaceAnnotation swaps the annotation with a's id for a. Returns false if
// no annotation with that id exists.
func (l *Layer) ReplaceAnnotation(a Annotation) bool {
	i := l.FindAnnotation(a.ID())
	if i < 0 {
		return false
	}
	l.Annotations[i] = a
	return true
}

// RemoveAnnotation deletes the annotation with the given id. Returns false
// if it was not present.
func (l *Layer) RemoveAnnotation(id string) bool {
	i := l.FindAnnotation(id)
	if i < 0 {
		return false
	}
	l.Annotations = append(l.Annotations[:i], l.Annotations[i+1:]...)
	return true
}
