package adjust

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"sprite-offsets/internal/grid"
)

// ErrNotFound is returned when a subject has no record.
var ErrNotFound = errors.New("no adjustment record")

// recordJSON matches one entry of the adjustments file. Every field is
// written; absent numeric fields read as nil ("not specified").
type recordJSON struct {
	UniqueID          string            `json:"uniqueId"`
	GroundOffsetY     *int              `json:"groundOffsetY"`
	CenterOffsetX     *int              `json:"centerOffsetX"`
	Reviewed          *bool             `json:"reviewed"`
	HitboxX           *int              `json:"hitboxX"`
	HitboxY           *int              `json:"hitboxY"`
	HitboxWidth       *int              `json:"hitboxWidth"`
	HitboxHeight      *int              `json:"hitboxHeight"`
	FrameWidth        *int              `json:"frameWidth"`
	FrameHeight       *int              `json:"frameHeight"`
	GridColumns       *int              `json:"gridColumns"`
	GridRows          *int              `json:"gridRows"`
	PrimarySpriteFile *string           `json:"primarySpriteFile"`
	AnimationFiles    map[string]string `json:"animationFiles"`
}

// Store holds adjustment records keyed by subject id (case-insensitive).
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Load reads an adjustments file. A missing file yields an empty store.
// Field names match case-insensitively. When an id repeats, the later
// entry wins unless the earlier one is reviewed.
func Load(path string) (*Store, error) {
	s := NewStore()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adjust: read %s: %w", path, err)
	}

	var entries []recordJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("adjust: parse %s: %w", path, err)
	}
	for _, e := range entries {
		if key(e.UniqueID) == "" {
			continue
		}
		s.Put(fromJSON(e), false)
	}
	return s, nil
}

// Save writes every record, sorted by id, replacing path atomically.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	entries := make([]recordJSON, 0, len(s.records))
	for _, r := range s.records {
		entries = append(entries, toJSON(r))
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool {
		return key(entries[i].UniqueID) < key(entries[j].UniqueID)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("adjust: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("adjust: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("adjust: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("adjust: replace %s: %w", path, err)
	}
	return nil
}

// Get returns the record for id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key(id)]
	return r, ok
}

// Put stores rec. Without force, a reviewed record already present is left
// untouched and Put reports false.
func (s *Store) Put(rec Record, force bool) bool {
	k := key(rec.UniqueID)
	if k == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.records[k]; ok && old.Reviewed && !force {
		return false
	}
	s.records[k] = rec
	return true
}

// Delete removes the record for id. It is only reached by explicit operator action.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(id)
	if _, ok := s.records[k]; !ok {
		return fmt.Errorf("adjust: %q: %w", id, ErrNotFound)
	}
	delete(s.records, k)
	return nil
}

// IDs returns every stored subject id, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for _, r := range s.records {
		ids = append(ids, r.UniqueID)
	}
	sort.Slice(ids, func(i, j int) bool { return key(ids[i]) < key(ids[j]) })
	return ids
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func fromJSON(e recordJSON) Record {
	r := Record{
		UniqueID:       e.UniqueID,
		GroundOffsetY:  deref(e.GroundOffsetY),
		CenterOffsetX:  deref(e.CenterOffsetX),
		AnimationFiles: e.AnimationFiles,
	}
	if e.Reviewed != nil {
		r.Reviewed = *e.Reviewed
	}
	if e.PrimarySpriteFile != nil {
		r.PrimarySpriteFile = *e.PrimarySpriteFile
	}
	if w, h := deref(e.HitboxWidth), deref(e.HitboxHeight); w > 0 && h > 0 {
		x, y := deref(e.HitboxX), deref(e.HitboxY)
		r.Hitbox = image.Rect(x, y, x+w, y+h)
	}
	if e.FrameWidth != nil && e.FrameHeight != nil {
		r.Frame = &grid.Frame{Width: *e.FrameWidth, Height: *e.FrameHeight}
	}
	if e.GridColumns != nil && e.GridRows != nil {
		r.Grid = &grid.Grid{Columns: *e.GridColumns, Rows: *e.GridRows}
	}
	return r
}

func toJSON(r Record) recordJSON {
	e := recordJSON{
		UniqueID:       r.UniqueID,
		GroundOffsetY:  ptr(r.GroundOffsetY),
		CenterOffsetX:  ptr(r.CenterOffsetX),
		Reviewed:       &r.Reviewed,
		HitboxX:        ptr(r.Hitbox.Min.X),
		HitboxY:        ptr(r.Hitbox.Min.Y),
		HitboxWidth:    ptr(r.Hitbox.Dx()),
		HitboxHeight:   ptr(r.Hitbox.Dy()),
		AnimationFiles: r.AnimationFiles,
	}
	if r.PrimarySpriteFile != "" {
		e.PrimarySpriteFile = &r.PrimarySpriteFile
	}
	if r.Frame != nil {
		e.FrameWidth, e.FrameHeight = ptr(r.Frame.Width), ptr(r.Frame.Height)
	}
	if r.Grid != nil {
		e.GridColumns, e.GridRows = ptr(r.Grid.Columns), ptr(r.Grid.Rows)
	}
	return e
}

func ptr(v int) *int { return &v }

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
