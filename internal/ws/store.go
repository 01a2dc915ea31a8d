package ws

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// Store is the simulator's item database
type Store struct {
	mu        sync.RWMutex
	items     map[string]types.Record
	contextID string
	now       func() time.Time
}

// NewStore creates a store seeded with one note, which becomes the
// context item of every connected component.
func NewStore() *Store {
	s := &Store{
		items: make(map[string]types.Record),
		now:   time.Now,
	}
	note := s.Put(types.Record{
		"content_type": "Note",
		"content": map[string]any{
			"title": "Welcome",
			"text":  "Edit me from the component.",
		},
	})
	s.contextID = note["uuid"].(string)
	return s
}

// ContextItem returns the item components are editing
func (s *Store) ContextItem() types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRecord(s.items[s.contextID])
}

// Put inserts or replaces rec, assigning a uuid and timestamps when
// missing. It returns the stored copy.
func (s *Store) Put(rec types.Record) types.Record {
	stored := copyRecord(rec)
	if id, _ := stored["uuid"].(string); id == "" {
		stored["uuid"] = uuid.NewString()
	}
	now := s.now().UTC()
	if stored["created_at"] == nil {
		stored["created_at"] = now
	}
	if stored["updated_at"] == nil {
		stored["updated_at"] = now
	}
	delete(stored, "parent")
	delete(stored, "children")

	s.mu.Lock()
	s.items[stored["uuid"].(string)] = stored
	s.mu.Unlock()
	return copyRecord(stored)
}

// Get returns the item with the given uuid
func (s *Store) Get(id string) (types.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[id]
	return copyRecord(rec), ok
}

// Delete removes items by uuid and returns how many existed
func (s *Store) Delete(ids ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// List returns items whose content type is in contentTypes, or every item
// when contentTypes is empty. Results are ordered by uuid.
func (s *Store) List(contentTypes ...string) []types.Record {
	want := make(map[string]bool, len(contentTypes))
	for _, ct := range contentTypes {
		want[ct] = true
	}

	s.mu.RLock()
	out := make([]types.Record, 0, len(s.items))
	for _, rec := range s.items {
		ct, _ := rec["content_type"].(string)
		if len(want) == 0 || want[ct] {
			out = append(out, copyRecord(rec))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i]["uuid"].(string) < out[j]["uuid"].(string)
	})
	return out
}

func copyRecord(rec types.Record) types.Record {
	if rec == nil {
		return nil
	}
	out := make(types.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
