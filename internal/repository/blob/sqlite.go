package blob

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/jaennil/guide_helper/backend/maps/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps slot blobs in a single sqlite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteStore(path string, l logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{
		db:     db,
		logger: l,
	}

	err = s.runMigrations()
	if err != nil {
		db.Close()
		return nil, err
	}

	l.Info("sqlite blob store initialized", "path", path)

	return s, nil
}

func (s *SQLiteStore) runMigrations() error {
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	err = goose.Up(s.db, "migrations")
	if err != nil {
		return err
	}

	return nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Get(ctx context.Context, slot int) ([]byte, error) {
	s.logger.Debug("sqlite blob get", "slot", slot)

	query := `SELECT data
	FROM tile_blob
	WHERE slot = ?`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, slot).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("sqlite blob get failed", "slot", slot, "error", err)
		return nil, err
	}

	return data, nil
}

func (s *SQLiteStore) Put(ctx context.Context, slot int, data []byte) error {
	s.logger.Debug("sqlite blob put", "slot", slot, "size", len(data))

	query := `INSERT INTO tile_blob (slot, data)
	VALUES (?, ?)
	ON CONFLICT(slot) DO UPDATE SET data = excluded.data`

	_, err := s.db.ExecContext(ctx, query, slot, data)
	if err != nil {
		s.logger.Error("sqlite blob put failed", "slot", slot, "error", err)
		return err
	}

	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, slot int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tile_blob WHERE slot = ?`, slot)
	if err != nil {
		s.logger.Error("sqlite blob delete failed", "slot", slot, "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
