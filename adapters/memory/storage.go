package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"mathquest/store"
)

// Store is a concurrent in-memory Gateway implementation. Collections
// are created lazily on first write.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage // collection -> id -> doc
}

func New() *Store {
	return &Store{data: map[string]map[string]json.RawMessage{}}
}

func (s *Store) collection(name string) map[string]json.RawMessage {
	if col, ok := s.data[name]; ok {
		return col
	}
	col := map[string]json.RawMessage{}
	s.data[name] = col
	return col
}

func (s *Store) Get(_ context.Context, collection, id string, dest any) error {
	s.mu.RLock()
	raw, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return store.ErrNotFound
	}
	return store.Decode(raw, dest)
}

func (s *Store) Set(_ context.Context, collection, id string, doc any) error {
	raw, err := store.Encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = raw
	return nil
}

func (s *Store) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	merged, err := store.Merge(raw, fields)
	if err != nil {
		return err
	}
	s.data[collection][id] = merged
	return nil
}

func (s *Store) Query(_ context.Context, collection, field string, value any, dest any) error {
	s.mu.RLock()
	var matches []json.RawMessage
	for _, raw := range s.data[collection] {
		if store.FieldMatches(raw, field, value) {
			matches = append(matches, raw)
		}
	}
	s.mu.RUnlock()
	return store.DecodeList(matches, dest)
}

func (s *Store) List(_ context.Context, collection string, dest any) error {
	s.mu.RLock()
	raws := make([]json.RawMessage, 0, len(s.data[collection]))
	for _, raw := range s.data[collection] {
		raws = append(raws, raw)
	}
	s.mu.RUnlock()
	return store.DecodeList(raws, dest)
}

func (s *Store) Add(_ context.Context, collection string, doc any) (string, error) {
	raw, err := store.Encode(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	raw, err = store.WithID(raw, id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = raw
	return id, nil
}

var _ store.Gateway = (*Store)(nil)
