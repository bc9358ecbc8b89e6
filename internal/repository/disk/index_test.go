package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(x int32) tile.Key {
	return tile.NewKey(x, x, 10, tile.GoogleMap)
}

func TestInsertWrapsCursor(t *testing.T) {
	idx := NewIndex(3)

	for i := int32(0); i < 3; i++ {
		slot, ok := idx.Insert(key(i))
		require.True(t, ok)
		assert.Equal(t, int(i), slot)
	}
	assert.Equal(t, 0, idx.Cursor())

	slot, ok := idx.Insert(key(99))
	require.True(t, ok)
	assert.Equal(t, 0, slot, "insert beyond capacity overwrites slot 0")

	_, ok = idx.Lookup(key(0))
	assert.False(t, ok, "overwritten key misses after rewrap")

	slot, ok = idx.Lookup(key(99))
	require.True(t, ok)
	assert.Equal(t, 0, slot)

	slot, ok = idx.Lookup(key(2))
	require.True(t, ok)
	assert.Equal(t, 2, slot)
}

func TestZeroCapacityDisablesInsert(t *testing.T) {
	idx := NewIndex(0)

	_, ok := idx.Insert(key(1))
	assert.False(t, ok)
	_, ok = idx.Lookup(key(1))
	assert.False(t, ok)
}

func TestEmptySlotsDoNotMatchZeroKey(t *testing.T) {
	idx := NewIndex(4)
	zero := tile.NewKey(0, 0, 0, tile.GoogleMap)

	_, ok := idx.Lookup(zero)
	assert.False(t, ok)

	idx.Insert(zero)
	slot, ok := idx.Lookup(zero)
	require.True(t, ok)
	assert.Equal(t, 0, slot)
	assert.Equal(t, 1, idx.Len())
}

func TestRemove(t *testing.T) {
	idx := NewIndex(4)
	slot, _ := idx.Insert(key(7))

	idx.Remove(slot)

	_, ok := idx.Lookup(key(7))
	assert.False(t, ok)
	assert.Equal(t, 1, idx.Cursor(), "remove does not rewind the cursor")
}

func TestResizeShrink(t *testing.T) {
	idx := NewIndex(1000)
	for i := int32(0); i < 1000; i++ {
		idx.Insert(key(i))
	}
	for i := int32(0); i < 15; i++ {
		idx.Insert(key(1000 + i))
	}
	require.Equal(t, 15, idx.Cursor())

	removed := idx.Resize(10)

	require.Len(t, removed, 990)
	assert.Equal(t, 10, removed[0])
	assert.Equal(t, 999, removed[len(removed)-1])
	assert.Equal(t, 10, idx.Capacity())
	assert.Equal(t, 0, idx.Cursor(), "cursor outside the new range restarts at 0")

	for i := int32(15); i < 1000; i++ {
		_, ok := idx.Lookup(key(i))
		assert.False(t, ok, "key %d was at slot >= 10", i)
	}
	_, ok := idx.Lookup(key(1005))
	assert.True(t, ok)
}

func TestResizeGrow(t *testing.T) {
	idx := NewIndex(2)
	idx.Insert(key(1))
	idx.Insert(key(2))
	idx.Insert(key(3))

	removed := idx.Resize(5)

	assert.Empty(t, removed)
	assert.Equal(t, 5, idx.Capacity())
	assert.Equal(t, 1, idx.Cursor())
	assert.Equal(t, 2, idx.Len())
	for slot := 2; slot < 5; slot++ {
		_, ok := idx.At(slot)
		assert.False(t, ok, "grown slot %d must be empty", slot)
	}
}

func TestMarshalLayout(t *testing.T) {
	idx := NewIndex(2)
	idx.Insert(tile.NewKey(1, 2, -3, tile.VirtualEarthRoad))

	data, err := idx.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, []byte{
		1, 0, 0, 0,
		1, 0, 0, 0, 2, 0, 0, 0, 0xfd, 0xff, 0xff, 0xff, 4, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff,
	}, data)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.dat")

	idx := NewIndex(8)
	for i := int32(0); i < 5; i++ {
		idx.Insert(key(i))
	}
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path, 8)
	require.NoError(t, err)
	assert.Equal(t, idx.entries, loaded.entries)
	assert.Equal(t, 5, loaded.Cursor())
}

func TestLoadTruncatesToConfiguredCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.dat")

	idx := NewIndex(8)
	for i := int32(0); i < 7; i++ {
		idx.Insert(key(i))
	}
	require.NoError(t, idx.Save(path))

	smaller, err := Load(path, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, smaller.Capacity())
	assert.Equal(t, 4, smaller.Len())
	assert.Equal(t, 0, smaller.Cursor())
	_, ok := smaller.Lookup(key(5))
	assert.False(t, ok)

	larger, err := Load(path, 16)
	require.NoError(t, err)
	assert.Equal(t, 7, larger.Len())
	assert.Equal(t, 7, larger.Cursor())
	_, ok = larger.At(12)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "missing.dat"), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.Capacity())
	assert.Equal(t, 0, idx.Len())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.dat")
	require.NoError(t, os.WriteFile(path, []byte{1, 2}, 0644))

	idx, err := Load(path, 10)
	assert.ErrorIs(t, err, ErrCorruptIndex)
	assert.Equal(t, 10, idx.Capacity())
	assert.Equal(t, 0, idx.Len())
}

func TestSlotPath(t *testing.T) {
	assert.Equal(t, filepath.Join("000", "000.dat"), SlotPath(0))
	assert.Equal(t, filepath.Join("000", "999.dat"), SlotPath(999))
	assert.Equal(t, filepath.Join("001", "000.dat"), SlotPath(1000))
	assert.Equal(t, filepath.Join("012", "345.dat"), SlotPath(12345))
}
