package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daylighthq/daylight-client/internal/common"
	"github.com/daylighthq/daylight-client/internal/dbx"
)

// SQLiteStore implements Store on a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a SQLiteStore bound to the given database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get reads the current snapshot of a record.
func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	query := `SELECT data FROM records WHERE name = ?`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %q: %w", name, err)
	}
	return data, nil
}

// Put overwrites the record in a single upsert. The row replacement is
// atomic, so readers see either the previous snapshot or the new one.
func (s *SQLiteStore) Put(ctx context.Context, name string, data []byte) error {
	query := `INSERT INTO records (name, data, updated_at)
			VALUES (?, ?, strftime('%s','now'))
			ON CONFLICT(name) DO UPDATE SET data = excluded.data,
				updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, name, data); err != nil {
		return fmt.Errorf("failed to write record %q: %w", name, err)
	}
	return nil
}

// Delete removes a record. Deleting an absent record is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete record %q: %w", name, err)
	}
	return nil
}

// DeleteAll removes the named records transactionally.
func (s *SQLiteStore) DeleteAll(ctx context.Context, names ...string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE name = ?`, name); err != nil {
				return fmt.Errorf("failed to delete record %q: %w", name, err)
			}
		}
		return nil
	})
}
