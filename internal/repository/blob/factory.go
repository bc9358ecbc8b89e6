package blob

import (
	"context"
	"fmt"

	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
)

const (
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
	BackendRedis      = "redis"
	BackendMemory     = "memory"
)

type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
	Redis      RedisConfig
}

// New creates the blob store selected by opts.Backend.
func New(ctx context.Context, opts Options, l logger.Logger) (Store, error) {
	switch opts.Backend {
	case BackendFilesystem, "":
		l.Info("using filesystem blob store", "dir", opts.Dir)
		return NewFilesystemStore(opts.Dir)
	case BackendSQLite:
		l.Info("using sqlite blob store", "path", opts.SQLitePath)
		return NewSQLiteStore(opts.SQLitePath, l)
	case BackendRedis:
		l.Info("using redis blob store", "addr", opts.Redis.Addr, "db", opts.Redis.DB)
		return NewRedisStore(ctx, opts.Redis)
	case BackendMemory:
		l.Info("using in-memory blob store")
		return NewMapStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %s (supported: filesystem, sqlite, redis, memory)", opts.Backend)
	}
}
