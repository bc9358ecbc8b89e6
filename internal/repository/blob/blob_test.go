package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, 7)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, 7, []byte("first")))
	require.NoError(t, s.Put(ctx, 1007, []byte("other shard")))

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	require.NoError(t, s.Put(ctx, 7, []byte("second")))
	got, err = s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got, "put overwrites the slot")

	require.NoError(t, s.Delete(ctx, 7))
	_, err = s.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, 7), "deleting an absent blob is fine")

	got, err = s.Get(ctx, 1007)
	require.NoError(t, err)
	assert.Equal(t, []byte("other shard"), got)
}

func TestFilesystemStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := NewFilesystemStore(dir)
	require.NoError(t, err)
	defer s.Close()

	storeContract(t, s)
}

func TestFilesystemStoreLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := NewFilesystemStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), 1234, []byte{0x89, 'P', 'N', 'G'}))

	data, err := os.ReadFile(filepath.Join(dir, "001", "234.dat"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	_, err = os.Stat(filepath.Join(dir, "001", "234.dat.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestMapStore(t *testing.T) {
	storeContract(t, NewMapStore())
}

func TestMapStoreCopiesInput(t *testing.T) {
	s := NewMapStore()
	data := []byte("tile")
	require.NoError(t, s.Put(context.Background(), 0, data))
	data[0] = 'x'

	got, err := s.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("tile"), got)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), logger.NewNoOpLogger())
	require.NoError(t, err)
	defer s.Close()

	storeContract(t, s)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Options{Backend: "s3"}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestNewDefaultsToFilesystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := New(context.Background(), Options{Dir: dir}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, s)
}
