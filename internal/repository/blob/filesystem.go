package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaennil/guide_helper/backend/maps/internal/repository/disk"
)

// FilesystemStore keeps one file per slot under <dir>/NNN/NNN.dat.
type FilesystemStore struct {
	dir string
}

var _ Store = (*FilesystemStore)(nil)

func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FilesystemStore{
		dir: dir,
	}, nil
}

// Path returns the file holding slot.
func (s *FilesystemStore) Path(slot int) string {
	return filepath.Join(s.dir, disk.SlotPath(slot))
}

func (s *FilesystemStore) Get(_ context.Context, slot int) ([]byte, error) {
	data, err := os.ReadFile(s.Path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FilesystemStore) Put(_ context.Context, slot int, data []byte) error {
	return disk.WriteFileAtomic(s.Path(slot), data)
}

func (s *FilesystemStore) Delete(_ context.Context, slot int) error {
	err := os.Remove(s.Path(slot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FilesystemStore) Close() error {
	return nil
}
