package blob

import (
	"context"
	"sync"
)

// MapStore keeps blobs in process memory. Nothing survives a restart, so it
// is only useful for tests and diskless deployments.
type MapStore struct {
	m *TypedSyncMap
}

type TypedSyncMap struct {
	m sync.Map
}

func (c *TypedSyncMap) Load(slot int) ([]byte, bool) {
	v, exists := c.m.Load(slot)
	if !exists {
		return nil, false
	}
	return v.([]byte), exists
}

func (c *TypedSyncMap) Store(slot int, v []byte) {
	c.m.Store(slot, v)
}

func (c *TypedSyncMap) Delete(slot int) {
	c.m.Delete(slot)
}

func NewMapStore() *MapStore {
	return &MapStore{
		m: &TypedSyncMap{},
	}
}

var _ Store = (*MapStore)(nil)

func (s *MapStore) Get(_ context.Context, slot int) ([]byte, error) {
	v, exists := s.m.Load(slot)
	if !exists {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *MapStore) Put(_ context.Context, slot int, data []byte) error {
	s.m.Store(slot, append([]byte(nil), data...))
	return nil
}

func (s *MapStore) Delete(_ context.Context, slot int) error {
	s.m.Delete(slot)
	return nil
}

func (s *MapStore) Close() error {
	return nil
}
