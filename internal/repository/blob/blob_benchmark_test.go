package blob

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
)

const (
	smallTileSize = 1024      // 1KB
	largeTileSize = 50 * 1024 // 50KB

	benchmarkSlots = 1000
)

func generateTileData(size int) []byte {
	data := make([]byte, size)
	rand.Read(data)
	return data
}

func setupSQLiteStore(b *testing.B) (*SQLiteStore, func()) {
	b.Helper()
	s, err := NewSQLiteStore(filepath.Join(b.TempDir(), "test.db"), logger.NewNoOpLogger())
	if err != nil {
		b.Fatalf("Failed to create SQLite store: %v", err)
	}
	return s, func() {
		s.Close()
	}
}

func setupMapStore(b *testing.B) (*MapStore, func()) {
	b.Helper()
	return NewMapStore(), func() {}
}

func setupFilesystemStore(b *testing.B) (*FilesystemStore, func()) {
	b.Helper()
	s, err := NewFilesystemStore(filepath.Join(b.TempDir(), "cache"))
	if err != nil {
		b.Fatalf("Failed to create filesystem store: %v", err)
	}
	return s, func() {}
}

func benchmarkPut(b *testing.B, s Store, size int) {
	ctx := context.Background()
	data := generateTileData(size)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Put(ctx, i%benchmarkSlots, data); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func benchmarkGet(b *testing.B, s Store, size int) {
	ctx := context.Background()
	data := generateTileData(size)

	// Populate store
	for i := 0; i < 100; i++ {
		s.Put(ctx, i, data)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Get(ctx, i%100); err != nil {
			b.Fatalf("Get failed: %v", err)
		}
	}
}

func BenchmarkPut_SQLite_Small(b *testing.B) {
	s, cleanup := setupSQLiteStore(b)
	defer cleanup()
	benchmarkPut(b, s, smallTileSize)
}

func BenchmarkPut_Map_Small(b *testing.B) {
	s, cleanup := setupMapStore(b)
	defer cleanup()
	benchmarkPut(b, s, smallTileSize)
}

func BenchmarkPut_Filesystem_Small(b *testing.B) {
	s, cleanup := setupFilesystemStore(b)
	defer cleanup()
	benchmarkPut(b, s, smallTileSize)
}

func BenchmarkPut_SQLite_Large(b *testing.B) {
	s, cleanup := setupSQLiteStore(b)
	defer cleanup()
	benchmarkPut(b, s, largeTileSize)
}

func BenchmarkPut_Filesystem_Large(b *testing.B) {
	s, cleanup := setupFilesystemStore(b)
	defer cleanup()
	benchmarkPut(b, s, largeTileSize)
}

func BenchmarkGet_SQLite_Small(b *testing.B) {
	s, cleanup := setupSQLiteStore(b)
	defer cleanup()
	benchmarkGet(b, s, smallTileSize)
}

func BenchmarkGet_Map_Small(b *testing.B) {
	s, cleanup := setupMapStore(b)
	defer cleanup()
	benchmarkGet(b, s, smallTileSize)
}

func BenchmarkGet_Filesystem_Small(b *testing.B) {
	s, cleanup := setupFilesystemStore(b)
	defer cleanup()
	benchmarkGet(b, s, smallTileSize)
}

func BenchmarkGet_Filesystem_Large(b *testing.B) {
	s, cleanup := setupFilesystemStore(b)
	defer cleanup()
	benchmarkGet(b, s, largeTileSize)
}
