package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Store holds the raw tile bytes of disk cache slots.
type Store interface {
	Get(ctx context.Context, slot int) ([]byte, error)
	Put(ctx context.Context, slot int, data []byte) error
	// Delete removes the blob of slot. Deleting an absent blob is not an error.
	Delete(ctx context.Context, slot int) error
	Close() error
}
