package annotation

import (
	"fmt"
	"strings"
	"time"
)

// CurrentVersion is the document format version written by this build.
// Older versions are loaded as-is; there are no migrations yet.
const CurrentVersion = 1

// DefaultLayerName is the name of the layer created for a brand-new map.
const DefaultLayerName = "Layer 1"

// Document is the persisted annotation state for one map.
type Document struct {
	Version       int     `json:"version"`
	MapID         string  `json:"mapId"`
	LastModified  int64   `json:"lastModified"`
	ActiveLayerID string  `json:"activeLayerId"`
	Layers        []Layer `json:"layers"`
}

// NewDocument creates the default document for a map: a single empty,
// visible, active layer.
func NewDocument(mapID string) *Document {
	layer := NewLayer(DefaultLayerName, 0)
	return &Document{
		Version:       CurrentVersion,
		MapID:         mapID,
		LastModified:  time.Now().UnixMilli(),
		ActiveLayerID: layer.ID,
		Layers:        []Layer{layer},
	}
}

// FindLayer returns the index of the layer with the given id, or -1.
func (d *Document) FindLayer(id string) int {
	for i := range d.Layers {
		if d.Layers[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveLayer returns a pointer to the active layer, or nil if the active id
// does not resolve.
func (d *Document) ActiveLayer() *Layer {
	i := d.FindLayer(d.ActiveLayerID)
	if i < 0 {
		return nil
	}
	return &d.Layers[i]
}

// HasName reports whether any layer other than excludeID already uses the
// name, compared case-insensitively.
func (d *Document) HasName(name string, excludeID string) bool {
	for i := range d.Layers {
		if d.Layers[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(d.Layers[i].Name, name) {
			return true
		}
	}
	return false
}

// VisibleCount returns the number of visible layers.
func (d *Document) VisibleCount() int {
	n := 0
	for i := range d.Layers {
		if d.Layers[i].Visible {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the document. Layer and annotation ids are
// preserved; this is the snapshot used for background saves.
func (d *Document) Clone() *Document {
	out := *d
	out.Layers = make([]Layer, len(d.Layers))
	for i, l := range d.Layers {
		out.Layers[i] = l.Copy()
	}
	return &out
}

// Validate checks the structural invariants of a loaded document: at least
// one layer, a resolvable active layer id, case-insensitively unique layer
// names, and at least one visible layer. In-memory documents may transiently
// break the layer floor (see manager.RemoveLayer); persisted ones may not.
func (d *Document) Validate() error {
	if d.MapID == "" {
		return fmt.Errorf("document has no map id")
	}
	if len(d.Layers) == 0 {
		return fmt.Errorf("document has no layers")
	}
	if d.FindLayer(d.ActiveLayerID) < 0 {
		return fmt.Errorf("active layer %q does not exist", d.ActiveLayerID)
	}

	seen := make(map[string]string, len(d.Layers))
	for i := range d.Layers {
		key := strings.ToLower(d.Layers[i].Name)
		if other, dup := seen[key]; dup {
			return fmt.Errorf("duplicate layer name %q (layers %s and %s)", d.Layers[i].Name, other, d.Layers[i].ID)
		}
		seen[key] = d.Layers[i].ID
	}

	if d.VisibleCount() == 0 {
		return fmt.Errorf("document has no visible layers")
	}
	return nil
}
