package disk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
)

const (
	headerSize = 4
	recordSize = 16

	// ShardSize bounds the number of blob files per directory.
	ShardSize = 1000
)

var ErrCorruptIndex = errors.New("corrupt disk cache index")

var empty = tile.Key{Provider: tile.NoProvider}

// Index maps disk cache slots to the tile stored in them. Slots are written
// round-robin through a cursor, so the entry written n writes ago is evicted
// once n reaches the capacity.
//
// Index is not safe for concurrent use.
type Index struct {
	entries []tile.Key
	cursor  int
}

// NewIndex returns an index with every slot empty.
func NewIndex(capacity int) *Index {
	if capacity < 0 {
		capacity = 0
	}
	entries := make([]tile.Key, capacity)
	for i := range entries {
		entries[i] = empty
	}
	return &Index{entries: entries}
}

func (i *Index) Capacity() int {
	return len(i.entries)
}

func (i *Index) Cursor() int {
	return i.cursor
}

// Len returns the number of occupied slots.
func (i *Index) Len() int {
	n := 0
	for _, k := range i.entries {
		if k.Provider != tile.NoProvider {
			n++
		}
	}
	return n
}

// At returns the key stored in slot.
func (i *Index) At(slot int) (tile.Key, bool) {
	if slot < 0 || slot >= len(i.entries) || i.entries[slot].Provider == tile.NoProvider {
		return tile.Key{}, false
	}
	return i.entries[slot], true
}

// Lookup returns the slot holding k.
func (i *Index) Lookup(k tile.Key) (int, bool) {
	if k.Provider == tile.NoProvider {
		return 0, false
	}
	for slot, e := range i.entries {
		if e == k {
			return slot, true
		}
	}
	return 0, false
}

// Insert records k at the cursor and advances it. The returned slot's blob
// must be (over)written by the caller. ok is false when the disk cache is
// disabled (capacity 0).
func (i *Index) Insert(k tile.Key) (slot int, ok bool) {
	if len(i.entries) == 0 {
		return 0, false
	}
	slot = i.cursor
	i.entries[slot] = k
	i.cursor = (i.cursor + 1) % len(i.entries)
	return slot, true
}

// Remove empties slot without moving the cursor.
func (i *Index) Remove(slot int) {
	if slot >= 0 && slot < len(i.entries) {
		i.entries[slot] = empty
	}
}

// Resize changes the capacity. It returns the slots that fall outside the new
// range so that their blobs can be deleted. New slots start empty and the
// cursor restarts at 0 if it no longer fits.
func (i *Index) Resize(capacity int) []int {
	if capacity < 0 {
		capacity = 0
	}
	old := len(i.entries)

	var removed []int
	switch {
	case capacity < old:
		removed = make([]int, 0, old-capacity)
		for slot := capacity; slot < old; slot++ {
			removed = append(removed, slot)
		}
		i.entries = i.entries[:capacity:capacity]
	case capacity > old:
		grown := make([]tile.Key, capacity)
		copy(grown, i.entries)
		for slot := old; slot < capacity; slot++ {
			grown[slot] = empty
		}
		i.entries = grown
	}

	if i.cursor >= capacity {
		i.cursor = 0
	}
	return removed
}

// MarshalBinary encodes the index as disk.dat: a little-endian int32 cursor
// followed by one {x, y, z, provider} int32 record per slot.
func (i *Index) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize+recordSize*len(i.entries))
	binary.LittleEndian.PutUint32(buf, uint32(int32(i.cursor)))
	for slot, k := range i.entries {
		off := headerSize + slot*recordSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(k.X))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(k.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(k.Z))
		binary.LittleEndian.PutUint32(buf[off+12:], uint32(k.Provider))
	}
	return buf, nil
}

// UnmarshalBinary restores records into the index's current capacity. The
// record count of data is implied by its length: extra records are dropped
// and missing ones stay empty.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes, want at least %d", ErrCorruptIndex, len(data), headerSize)
	}

	for slot := range i.entries {
		i.entries[slot] = empty
	}

	stored := (len(data) - headerSize) / recordSize
	n := min(stored, len(i.entries))
	for slot := 0; slot < n; slot++ {
		off := headerSize + slot*recordSize
		i.entries[slot] = tile.Key{
			X:        int32(binary.LittleEndian.Uint32(data[off:])),
			Y:        int32(binary.LittleEndian.Uint32(data[off+4:])),
			Z:        int32(binary.LittleEndian.Uint32(data[off+8:])),
			Provider: tile.Provider(int32(binary.LittleEndian.Uint32(data[off+12:]))),
		}
	}

	i.cursor = int(int32(binary.LittleEndian.Uint32(data)))
	if i.cursor < 0 || i.cursor >= len(i.entries) {
		i.cursor = 0
	}
	return nil
}

// Load reads the index persisted at path into an index of the given
// capacity. A missing file yields an empty index. On a corrupt file the
// returned index is empty and the error explains why.
func Load(path string, capacity int) (*Index, error) {
	idx := NewIndex(capacity)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return idx, fmt.Errorf("failed to read disk cache index: %w", err)
	}

	if err := idx.UnmarshalBinary(data); err != nil {
		return NewIndex(capacity), err
	}
	return idx, nil
}

// Save writes the index to path in one sequential write through a temporary
// file.
func (i *Index) Save(path string) error {
	data, err := i.MarshalBinary()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// SlotPath returns the blob location of slot relative to the cache
// directory: "<slot/1000>/<slot%1000>.dat", both zero padded to 3 digits.
func SlotPath(slot int) string {
	return filepath.Join(fmt.Sprintf("%03d", slot/ShardSize), fmt.Sprintf("%03d.dat", slot%ShardSize))
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}
	return nil
}
