package usecase

import (
	"errors"
	"sync"

	"github.com/jaennil/guide_helper/backend/maps/internal/repository/blob"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/disk"
	"github.com/jaennil/guide_helper/backend/maps/internal/repository/memory"
	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
)

var ErrStorage = errors.New("tile storage error")

// CacheStore owns both cache tiers and the shard counter. Its mutex covers
// every scan and write of the tiers so that a scan never observes a
// half-written slot; upstream fetches run outside it.
type CacheStore struct {
	mu       sync.Mutex
	memory   *memory.Ring
	index    *disk.Index
	blobs    blob.Store
	balancer *tile.Balancer
}

func NewCacheStore(mem *memory.Ring, index *disk.Index, blobs blob.Store) *CacheStore {
	return &CacheStore{
		memory:   mem,
		index:    index,
		blobs:    blobs,
		balancer: tile.NewBalancer(tile.ShardCount),
	}
}

// Stats is a snapshot of cache occupancy.
type Stats struct {
	MemoryEntries  int `json:"memory_entries"`
	MemoryCapacity int `json:"memory_capacity"`
	DiskEntries    int `json:"disk_entries"`
	DiskCapacity   int `json:"disk_capacity"`
	DiskCursor     int `json:"disk_cursor"`
}

func (s *CacheStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		MemoryEntries:  s.memory.Len(),
		MemoryCapacity: s.memory.Cap(),
		DiskEntries:    s.index.Len(),
		DiskCapacity:   s.index.Capacity(),
		DiskCursor:     s.index.Cursor(),
	}
}

// DiskLookup reports the disk cache slot holding k.
func (s *CacheStore) DiskLookup(k tile.Key) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.Lookup(k)
}
