package memory

import (
	"image"
	"testing"

	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

func TestRingEvictsOldestWrite(t *testing.T) {
	r := NewRing(DefaultSize)
	for i := 0; i <= DefaultSize; i++ {
		r.Put(tile.NewKey(int32(i), 0, 10, tile.GoogleMap), newImage())
	}

	_, ok := r.Get(tile.NewKey(0, 0, 10, tile.GoogleMap))
	assert.False(t, ok, "first key should be evicted")

	for i := 1; i <= DefaultSize; i++ {
		_, ok := r.Get(tile.NewKey(int32(i), 0, 10, tile.GoogleMap))
		assert.True(t, ok, "key %d should still be cached", i)
	}
	assert.Equal(t, DefaultSize, r.Len())
}

func TestRingIgnoresAccessRecency(t *testing.T) {
	r := NewRing(2)
	a := tile.NewKey(1, 1, 10, tile.GoogleMap)
	b := tile.NewKey(2, 2, 10, tile.GoogleMap)
	c := tile.NewKey(3, 3, 10, tile.GoogleMap)

	r.Put(a, newImage())
	r.Put(b, newImage())
	for i := 0; i < 10; i++ {
		_, ok := r.Get(a)
		require.True(t, ok)
	}
	r.Put(c, newImage())

	_, ok := r.Get(a)
	assert.False(t, ok, "frequently read key is still evicted by write order")
	_, ok = r.Get(b)
	assert.True(t, ok)
}

func TestRingEmptySlotsNeverMatch(t *testing.T) {
	r := NewRing(4)

	_, ok := r.Get(tile.Key{})
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 4, r.Cap())
}

func TestRingProviderIsPartOfKey(t *testing.T) {
	r := NewRing(4)
	img := newImage()
	r.Put(tile.NewKey(5, 5, 10, tile.GoogleMap), img)

	got, ok := r.Get(tile.NewKey(5, 5, 10, tile.GoogleMap))
	require.True(t, ok)
	assert.Same(t, img, got)

	_, ok = r.Get(tile.NewKey(5, 5, 10, tile.GoogleSatellite))
	assert.False(t, ok)
}
