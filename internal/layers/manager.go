// Package layers manages the in-memory annotation document for the map
// being edited: layer CRUD with validation, visibility rules, observer
// notification, and save scheduling.
package layers

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/internal/store"
)

// MaxNameLength is the longest accepted layer name after trimming.
const MaxNameLength = 30

// ChangeListener receives a snapshot of the layer list and the active layer
// id after every successful mutation. The snapshot is a deep copy; holding
// it across later mutations is safe.
type ChangeListener func(layers []annotation.Layer, activeLayerID string)

// Manager owns the single currently-loaded document. All mutations are
// expected from one interaction goroutine; only persistence runs in the
// background (inside the store). Every successful mutation schedules a
// debounced save and synchronously notifies listeners; persistence failures
// are logged by the store and never roll back the in-memory state.
type Manager struct {
	store *store.Store
	log   zerolog.Logger

	doc       *annotation.Document
	listeners []ChangeListener
}

// NewManager creates a manager with no document loaded.
func NewManager(st *store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: st, log: log}
}

// OnChange registers a listener. Listeners are invoked synchronously on the
// mutating goroutine, in registration order.
func (m *Manager) OnChange(fn ChangeListener) {
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify() {
	layers := m.Layers()
	active := ""
	if m.doc != nil {
		active = m.doc.ActiveLayerID
	}
	for _, fn := range m.listeners {
		fn(layers, active)
	}
}

// Load fetches the document for a map from the store, or creates the
// default single-layer document if none is persisted. It becomes the active
// in-memory document.
func (m *Manager) Load(mapID string) (*annotation.Document, error) {
	doc, err := m.store.Load(mapID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = annotation.NewDocument(mapID)
		m.log.Info().Str("map_id", mapID).Msg("created default annotation document")
	}
	m.doc = doc
	m.notify()
	return doc, nil
}

// Unload flushes any pending save synchronously and drops the document.
func (m *Manager) Unload() error {
	if m.doc == nil {
		return nil
	}
	var err error
	if len(m.doc.Layers) == 0 {
		m.store.Delete(m.doc.MapID)
	} else {
		err = m.store.SaveImmediate(m.doc.MapID, m.doc)
	}
	m.doc = nil
	return err
}

// validateName trims and checks a proposed layer name. excludeID skips one
// layer in the duplicate check (for renames).
func (m *Manager) validateName(name, excludeID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("%w: %d > %d characters", ErrNameTooLong, len([]rune(name)), MaxNameLength)
	}
	if m.doc.HasName(name, excludeID) {
		return "", fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return name, nil
}

// AddLayer appends a new empty layer and makes it active.
func (m *Manager) AddLayer(name string) (*annotation.Layer, error) {
	if m.doc == nil {
		return nil, ErrNoDocument
	}
	name, err := m.validateName(name, "")
	if err != nil {
		return nil, err
	}

	layer := annotation.NewLayer(name, len(m.doc.Layers))
	m.doc.Layers = append(m.doc.Layers, layer)
	m.doc.ActiveLayerID = layer.ID

	m.afterMutation()
	added := m.doc.Layers[len(m.doc.Layers)-1]
	return &added, nil
}

// RemoveLayer deletes a layer. Removing the active layer reassigns the
// active id to the first remaining layer; removing the last layer leaves a
// zero-layer document with an empty active id (AddLayer restores normality).
func (m *Manager) RemoveLayer(id string) error {
	if m.doc == nil {
		return ErrNoDocument
	}
	i := m.doc.FindLayer(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}

	m.doc.Layers = append(m.doc.Layers[:i], m.doc.Layers[i+1:]...)
	if m.doc.ActiveLayerID == id {
		if len(m.doc.Layers) > 0 {
			m.doc.ActiveLayerID = m.doc.Layers[0].ID
		} else {
			m.doc.ActiveLayerID = ""
		}
	}

	m.afterMutation()
	return nil
}

// RenameLayer changes a layer's name, applying the same validation as
// AddLayer but allowing the layer to keep its current name.
func (m *Manager) RenameLayer(id, newName string) error {
	if m.doc == nil {
		return ErrNoDocument
	}
	i := m.doc.FindLayer(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	name, err := m.validateName(newName, id)
	if err != nil {
		return err
	}

	m.doc.Layers[i].Name = name
	m.afterMutation()
	return nil
}

// DuplicateLayer deep-copies a layer (new ids throughout), inserts the copy
// directly above the source, and makes it active.
func (m *Manager) DuplicateLayer(id string) (*annotation.Layer, error) {
	if m.doc == nil {
		return nil, ErrNoDocument
	}
	i := m.doc.FindLayer(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}

	dup := m.doc.Layers[i].Clone()
	dup.Name = m.uniqueCopyName(m.doc.Layers[i].Name)

	m.doc.Layers = append(m.doc.Layers, annotation.Layer{})
	copy(m.doc.Layers[i+2:], m.doc.Layers[i+1:])
	m.doc.Layers[i+1] = dup
	m.normalizeZIndex()
	m.doc.ActiveLayerID = dup.ID

	m.afterMutation()
	inserted := m.doc.Layers[i+1]
	return &inserted, nil
}

// uniqueCopyName derives a non-conflicting name for a duplicated layer.
// The base is truncated first so the suffix never pushes the name over the
// length limit.
func (m *Manager) uniqueCopyName(base string) string {
	runes := []rune(base)
	if len(runes) > MaxNameLength-9 {
		runes = runes[:MaxNameLength-9]
	}
	base = string(runes)

	name := base + " copy"
	for n := 2; m.doc.HasName(name, ""); n++ {
		name = fmt.Sprintf("%s copy %d", base, n)
	}
	return name
}

// SetActiveLayer designates the layer new annotations are written to. A
// hidden layer may be active.
func (m *Manager) SetActiveLayer(id string) error {
	if m.doc == nil {
		return ErrNoDocument
	}
	if m.doc.FindLayer(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	m.doc.ActiveLayerID = id
	m.afterMutation()
	return nil
}

// ToggleLayerVisibility flips one layer's visibility.
func (m *Manager) ToggleLayerVisibility(id string) error {
	if m.doc == nil {
		return ErrNoDocument
	}
	i := m.doc.FindLayer(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	m.doc.Layers[i].Visible = !m.doc.Layers[i].Visible
	m.afterMutation()
	return nil
}

// HideAllLayers hides every layer, then force-unhides one (the active layer
// if it exists, else the first) so at least one layer stays visible.
func (m *Manager) HideAllLayers() error {
	if m.doc == nil {
		return ErrNoDocument
	}
	for i := range m.doc.Layers {
		m.doc.Layers[i].Visible = false
	}
	if len(m.doc.Layers) > 0 {
		keep := m.doc.FindLayer(m.doc.ActiveLayerID)
		if keep < 0 {
			keep = 0
		}
		m.doc.Layers[keep].Visible = true
	}
	m.afterMutation()
	return nil
}

// ShowAllLayers makes every layer visible.
func (m *Manager) ShowAllLayers() error {
	if m.doc == nil {
		return ErrNoDocument
	}
	for i := range m.doc.Layers {
		m.doc.Layers[i].Visible = true
	}
	m.afterMutation()
	return nil
}

// ReorderLayers replaces the layer order with the given id sequence, which
// must be a permutation of the current layer ids. ZIndex values are
// renormalized to list position.
func (m *Manager) ReorderLayers(ids []string) error {
	if m.doc == nil {
		return ErrNoDocument
	}
	if len(ids) != len(m.doc.Layers) {
		return fmt.Errorf("%w: got %d ids, have %d layers", ErrOrderMismatch, len(ids), len(m.doc.Layers))
	}

	reordered := make([]annotation.Layer, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %s", ErrOrderMismatch, id)
		}
		seen[id] = true
		i := m.doc.FindLayer(id)
		if i < 0 {
			return fmt.Errorf("%w: unknown id %s", ErrOrderMismatch, id)
		}
		reordered = append(reordered, m.doc.Layers[i])
	}

	m.doc.Layers = reordered
	m.normalizeZIndex()
	m.afterMutation()
	return nil
}

func (m *Manager) normalizeZIndex() {
	for i := range m.doc.Layers {
		m.doc.Layers[i].ZIndex = i
	}
}

// afterMutation schedules the debounced save and fans out the change
// notification. The two side effects are independent.
func (m *Manager) afterMutation() {
	m.scheduleSave()
	m.notify()
}

// scheduleSave persists the document, except that a zero-layer document is
// never written: the loader rejects it, which would bounce the next Load to
// the stale backup. Deleting the record makes removal of the last layer
// stick across sessions.
func (m *Manager) scheduleSave() {
	if len(m.doc.Layers) == 0 {
		m.store.Delete(m.doc.MapID)
		return
	}
	m.store.Save(m.doc.MapID, m.doc)
}

// MutateLayer runs fn against the layer with the given id and, if fn
// reports a change, persists and notifies. This is the editor's hook for
// annotation-level edits.
func (m *Manager) MutateLayer(id string, fn func(*annotation.Layer) bool) error {
	if m.doc == nil {
		return ErrNoDocument
	}
	i := m.doc.FindLayer(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	if fn(&m.doc.Layers[i]) {
		m.afterMutation()
	}
	return nil
}

// Layers returns a deep copy of the layer list in paint order. The copy is
// independent of the live document and safe to hold across mutations.
func (m *Manager) Layers() []annotation.Layer {
	if m.doc == nil {
		return nil
	}
	out := make([]annotation.Layer, len(m.doc.Layers))
	for i, l := range m.doc.Layers {
		out[i] = l.Copy()
	}
	return out
}

// ActiveLayerID returns the active layer id, or "" if no document is loaded.
func (m *Manager) ActiveLayerID() string {
	if m.doc == nil {
		return ""
	}
	return m.doc.ActiveLayerID
}

// ActiveLayer returns the active layer, or nil.
func (m *Manager) ActiveLayer() *annotation.Layer {
	if m.doc == nil {
		return nil
	}
	return m.doc.ActiveLayer()
}

// FindLayer returns the layer with the given id, or nil.
func (m *Manager) FindLayer(id string) *annotation.Layer {
	if m.doc == nil {
		return nil
	}
	i := m.doc.FindLayer(id)
	if i < 0 {
		return nil
	}
	return &m.doc.Layers[i]
}

// MapID returns the loaded document's map id, or "".
func (m *Manager) MapID() string {
	if m.doc == nil {
		return ""
	}
	return m.doc.MapID
}

// Document exposes the loaded document. Callers must not mutate it directly.
func (m *Manager) Document() *annotation.Document {
	return m.doc
}

// SaveAnnotations schedules a debounced save of the current document.
func (m *Manager) SaveAnnotations() error {
	if m.doc == nil {
		return ErrNoDocument
	}
	m.scheduleSave()
	return nil
}

// SaveAnnotationsImmediate writes the current document synchronously.
func (m *Manager) SaveAnnotationsImmediate() error {
	if m.doc == nil {
		return ErrNoDocument
	}
	if len(m.doc.Layers) == 0 {
		m.store.Delete(m.doc.MapID)
		return nil
	}
	return m.store.SaveImmediate(m.doc.MapID, m.doc)
}
