package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: timex.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := r.GetEntry(ctx, key)
	if e == nil || err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.SetEntry(ctx, Entry{Key: key, Value: value, LastModified: r.now()})
}

func (r *SQLiteRepository) SetEntry(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, last_modified) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, last_modified = excluded.last_modified
	`, e.Key, e.Value, timex.ToMillis(e.LastModified))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", e.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, key string) (*Entry, error) {
	e := &Entry{Key: key}
	var ts int64
	err := r.db.QueryRowContext(ctx, `SELECT value, last_modified FROM metadata WHERE key = ?`, key).Scan(&e.Value, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	e.LastModified = timex.FromMillis(ts)
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *SQLiteRepository) ListPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, last_modified FROM metadata WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata[%s*]: %w", prefix, err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.Key, &e.Value, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		e.LastModified = timex.FromMillis(ts)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}
	return result, nil
}
