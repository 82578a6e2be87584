// Package memorystore implements storage.Store in a purely in-memory manner.
// Records are held as JSON so that callers never share memory with the store.
package memorystore

import (
	"encoding/json"
	"sync"

	"github.com/dpup/syncauth/errors"
	"github.com/dpup/syncauth/storage"
)

// New returns a store that provides transient, in-memory storage. Data does
// not survive the process.
func New() storage.Store {
	return &store{
		data: map[string]map[string][]byte{},
	}
}

type store struct {
	// store[modelName][entityID] = JSON
	data map[string]map[string][]byte
	mu   sync.RWMutex
}

func (s *store) Upsert(models ...storage.Model) error {
	// Marshal everything first so a bad model leaves the store untouched.
	encoded := make([][]byte, len(models))
	for i, m := range models {
		if err := storage.ValidateReceiver(m); err != nil {
			return err
		}
		b, err := json.Marshal(m)
		if err != nil {
			return errors.Mark(storage.ErrInvalidModel, 0).Append(err.Error())
		}
		encoded[i] = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range models {
		n := storage.Name(m)
		if s.data[n] == nil {
			s.data[n] = map[string][]byte{}
		}
		s.data[n][m.PK()] = encoded[i]
	}
	return nil
}

func (s *store) Read(id string, model storage.Model) error {
	if err := storage.ValidateReceiver(model); err != nil {
		return err
	}

	n := storage.Name(model)

	s.mu.RLock()
	b, ok := s.data[n][id]
	s.mu.RUnlock()

	if !ok {
		return errors.Mark(storage.ErrNotFound, 0)
	}
	if err := json.Unmarshal(b, model); err != nil {
		return errors.Mark(storage.ErrInvalidModel, 0).Append(err.Error())
	}
	return nil
}

func (s *store) Exists(id string, model storage.Model) (bool, error) {
	n := storage.Name(model)

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[n][id]
	return ok, nil
}
