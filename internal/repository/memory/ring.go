package memory

import (
	"image"

	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
)

// DefaultSize is the number of decoded tiles kept in memory.
const DefaultSize = 32

type entry struct {
	key  tile.Key
	img  image.Image
	used bool
}

// Ring is a write-rotation cache of decoded tiles. Put always overwrites the
// slot under the cursor and advances it, so eviction follows insertion order
// only; a Get never changes which entry goes next.
//
// Ring is not safe for concurrent use.
type Ring struct {
	entries []entry
	cursor  int
}

func NewRing(size int) *Ring {
	if size < 1 {
		size = DefaultSize
	}
	return &Ring{
		entries: make([]entry, size),
	}
}

func (r *Ring) Get(k tile.Key) (image.Image, bool) {
	for i := range r.entries {
		if r.entries[i].used && r.entries[i].key == k {
			return r.entries[i].img, true
		}
	}
	return nil, false
}

// Put stores img in the next slot, dropping whatever occupied it.
func (r *Ring) Put(k tile.Key, img image.Image) {
	r.entries[r.cursor] = entry{key: k, img: img, used: true}
	r.cursor = (r.cursor + 1) % len(r.entries)
}

func (r *Ring) Len() int {
	n := 0
	for i := range r.entries {
		if r.entries[i].used {
			n++
		}
	}
	return n
}

func (r *Ring) Cap() int {
	return len(r.entries)
}
