package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"mathquest/store"
)

// Store persists every collection to a single JSON file.
// Suitable for demos and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[string]map[string]json.RawMessage
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[string]map[string]json.RawMessage{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &s.data)
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
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
	s.mu.Lock()
	raw, ok := s.data[collection][id]
	s.mu.Unlock()
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
	return s.persist()
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
	return s.persist()
}

func (s *Store) Query(_ context.Context, collection, field string, value any, dest any) error {
	s.mu.Lock()
	var matches []json.RawMessage
	for _, raw := range s.data[collection] {
		if store.FieldMatches(raw, field, value) {
			matches = append(matches, raw)
		}
	}
	s.mu.Unlock()
	return store.DecodeList(matches, dest)
}

func (s *Store) List(_ context.Context, collection string, dest any) error {
	s.mu.Lock()
	raws := make([]json.RawMessage, 0, len(s.data[collection]))
	for _, raw := range s.data[collection] {
		raws = append(raws, raw)
	}
	s.mu.Unlock()
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
	if err := s.persist(); err != nil {
		return "", err
	}
	return id, nil
}

var _ store.Gateway = (*Store)(nil)
