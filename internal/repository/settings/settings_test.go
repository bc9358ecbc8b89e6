package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaennil/guide_helper/backend/maps/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLayout(t *testing.T) {
	data, err := Config{DiskCacheCapacity: 1000, EffectsEnabled: true}.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe8, 0x03, 0, 0, 1, 0, 0, 0}, data)
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.dat")
	defaults := Config{DiskCacheCapacity: 1000, EffectsEnabled: true}

	cfg, err := LoadConfig(path, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg, "missing file yields defaults")

	require.NoError(t, SaveConfig(path, Config{DiskCacheCapacity: 10}))

	cfg, err = LoadConfig(path, defaults)
	require.NoError(t, err)
	assert.Equal(t, Config{DiskCacheCapacity: 10, EffectsEnabled: false}, cfg)
}

func TestConfigLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.dat")
	require.NoError(t, os.WriteFile(path, []byte{1, 2}, 0644))
	defaults := Config{DiskCacheCapacity: 1000}

	cfg, err := LoadConfig(path, defaults)
	assert.Error(t, err)
	assert.Equal(t, defaults, cfg)
}

func TestFavoritesSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorite.dat")

	var favs Favorites
	require.NoError(t, favs.Set(0, Favorite{X: 5.5, Y: 7.25, Z: 10, Provider: tile.GoogleSatellite, Name: "home"}))
	require.NoError(t, favs.Set(8, Favorite{X: 1, Y: 2, Z: -2, Provider: tile.VirtualEarthHill, Name: "hills"}))
	require.NoError(t, SaveFavorites(path, &favs))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(favoriteSize*NumFavorites), info.Size())

	loaded, err := LoadFavorites(path)
	require.NoError(t, err)
	assert.Equal(t, favs, loaded)
	assert.True(t, loaded[0].Valid)
	assert.False(t, loaded[1].Valid)
}

func TestFavoritesSlotBounds(t *testing.T) {
	var favs Favorites

	assert.ErrorIs(t, favs.Set(NumFavorites, Favorite{}), ErrInvalidSlot)
	assert.ErrorIs(t, favs.Clear(-1), ErrInvalidSlot)
	_, err := favs.Get(99)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestFavoritesClear(t *testing.T) {
	var favs Favorites
	require.NoError(t, favs.Set(3, Favorite{Name: "work"}))
	require.NoError(t, favs.Clear(3))

	fav, err := favs.Get(3)
	require.NoError(t, err)
	assert.False(t, fav.Valid)
}

func TestFavoriteNameTruncated(t *testing.T) {
	var favs Favorites
	long := strings.Repeat("é", 40)
	require.NoError(t, favs.Set(0, Favorite{Name: long}))

	fav, _ := favs.Get(0)
	assert.LessOrEqual(t, len(fav.Name), NameLength-1)
	assert.True(t, strings.HasPrefix(long, fav.Name))
	assert.Equal(t, 24, len([]rune(fav.Name)))
}
