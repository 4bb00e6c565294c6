// Package store persists annotation documents, one JSON file per map id,
// with debounced background saves and a one-generation backup per map.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
)

// DebounceDelay is the quiet period coalescing rapid saves for one map.
const DebounceDelay = 500 * time.Millisecond

const (
	fileExt   = ".json"
	backupExt = ".json.bak"
)

// Store reads and writes annotation documents under a single directory.
// Save is debounced per map id on background timers; SaveImmediate and
// Close are the only blocking paths.
type Store struct {
	dir string
	log zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingSave
	writers map[string]*sync.Mutex
}

type pendingSave struct {
	timer      *time.Timer
	doc        *annotation.Document
	generation uint64
}

// New creates a store rooted at dir. The directory is created on first write.
func New(dir string, log zerolog.Logger) *Store {
	return &Store{
		dir:     dir,
		log:     log,
		pending: make(map[string]*pendingSave),
		writers: make(map[string]*sync.Mutex),
	}
}

// writer returns the mutex serializing disk access for one map id, so a
// debounced flush, an immediate save, and a delete can never interleave
// their writes to the same files.
func (s *Store) writer(mapID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.writers[mapID]
	if !ok {
		w = &sync.Mutex{}
		s.writers[mapID] = w
	}
	return w
}

// Save schedules a debounced write for the map. A save already pending for
// the same map id is cancelled and restarted with a snapshot of doc; saves
// for other map ids are unaffected. The call never blocks on disk I/O.
func (s *Store) Save(mapID string, doc *annotation.Document) {
	snapshot := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[mapID]; ok {
		p.timer.Stop()
	}

	p := &pendingSave{doc: snapshot}
	if prev, ok := s.pending[mapID]; ok {
		p.generation = prev.generation + 1
	}
	s.pending[mapID] = p

	generation := p.generation
	p.timer = time.AfterFunc(DebounceDelay, func() {
		s.flush(mapID, generation)
	})
}

// SaveImmediate cancels any pending debounce for the map and writes
// synchronously. It must be called before a document is discarded. The
// pending entry is removed before the writer lock is taken, so a timer
// firing during the write finds nothing to flush, and a flush already
// holding the lock finishes first with the immediate write landing after.
func (s *Store) SaveImmediate(mapID string, doc *annotation.Document) error {
	s.mu.Lock()
	if p, ok := s.pending[mapID]; ok {
		p.timer.Stop()
		delete(s.pending, mapID)
	}
	s.mu.Unlock()

	w := s.writer(mapID)
	w.Lock()
	defer w.Unlock()
	return s.write(mapID, doc.Clone())
}

// flush runs on the debounce timer goroutine. The writer lock is held from
// before the dequeue until the write completes, so a concurrent immediate
// save or delete either cancels this flush or strictly follows it.
func (s *Store) flush(mapID string, generation uint64) {
	w := s.writer(mapID)
	w.Lock()
	defer w.Unlock()

	s.mu.Lock()
	p, ok := s.pending[mapID]
	if !ok || p.generation != generation {
		// Superseded or cancelled after the timer fired.
		s.mu.Unlock()
		return
	}
	delete(s.pending, mapID)
	doc := p.doc
	s.mu.Unlock()

	if err := s.write(mapID, doc); err != nil {
		// Not propagated; the next mutation's debounce cycle retries.
		s.log.Error().Err(err).Str("map_id", mapID).Msg("debounced save failed")
	}
}

// write backs up the current primary file and overwrites it.
func (s *Store) write(mapID string, doc *annotation.Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	path := s.path(mapID)
	doc.LastModified = time.Now().UnixMilli()

	// Preserve the last successful write before overwriting it.
	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(s.backupPath(mapID), prev, 0o644); err != nil {
			s.log.Warn().Err(err).Str("map_id", mapID).Msg("backup write failed")
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads the document for a map. A missing document returns (nil, nil).
// A primary file that fails to parse or validate falls back to the backup
// slot; if both are unusable the document is reported absent rather than
// returning a half-valid result.
func (s *Store) Load(mapID string) (*annotation.Document, error) {
	doc, err := s.readFile(s.path(mapID))
	if err == nil {
		if doc == nil {
			return nil, nil
		}
		if doc.Version != annotation.CurrentVersion {
			s.log.Warn().Str("map_id", mapID).
				Int("version", doc.Version).
				Int("supported", annotation.CurrentVersion).
				Msg("document version mismatch, loading as-is")
		}
		return doc, nil
	}

	s.log.Error().Err(err).Str("map_id", mapID).Msg("primary document unusable, trying backup")

	doc, berr := s.readFile(s.backupPath(mapID))
	if berr != nil || doc == nil {
		if berr != nil {
			s.log.Error().Err(berr).Str("map_id", mapID).Msg("backup document unusable")
		}
		return nil, nil
	}
	return doc, nil
}

// readFile returns (nil, nil) when the file does not exist and an error when
// it exists but cannot be parsed or validated.
func (s *Store) readFile(path string) (*annotation.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc annotation.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes the primary and backup records for a map and cancels any
// pending save. Returns true if a primary record existed.
func (s *Store) Delete(mapID string) bool {
	s.mu.Lock()
	if p, ok := s.pending[mapID]; ok {
		p.timer.Stop()
		delete(s.pending, mapID)
	}
	s.mu.Unlock()

	w := s.writer(mapID)
	w.Lock()
	defer w.Unlock()

	err := os.Remove(s.path(mapID))
	_ = os.Remove(s.backupPath(mapID))
	return err == nil
}

// HasData reports whether a primary record exists for the map.
func (s *Store) HasData(mapID string) bool {
	_, err := os.Stat(s.path(mapID))
	return err == nil
}

// Close synchronously flushes every pending debounced save. Used at session
// teardown so the last debounce window is not lost.
func (s *Store) Close() error {
	s.mu.Lock()
	docs := make(map[string]*annotation.Document, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		docs[id] = p.doc
	}
	s.pending = make(map[string]*pendingSave)
	s.mu.Unlock()

	var firstErr error
	for id, doc := range docs {
		w := s.writer(id)
		w.Lock()
		err := s.write(id, doc)
		w.Unlock()
		if err != nil {
			s.log.Error().Err(err).Str("map_id", id).Msg("flush on close failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) path(mapID string) string {
	return filepath.Join(s.dir, sanitize(mapID)+fileExt)
}

func (s *Store) backupPath(mapID string) string {
	return filepath.Join(s.dir, sanitize(mapID)+backupExt)
}

// sanitize makes a map id safe to use as a file stem. Map ids come from the
// application's own registry, so this only guards against separators.
func sanitize(mapID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	return r.Replace(mapID)
}
