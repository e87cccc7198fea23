package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBTX is an interface that both sql.DB and sql.Tx implement.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries provides table-aware database operations.
type Queries struct {
	db          DBTX
	tablePrefix string
	dialect     Dialect
}

// NewQueries creates a new Queries instance for the tables with the given prefix.
func NewQueries(db DBTX, tablePrefix string, dialect Dialect) *Queries {
	return &Queries{
		db:          db,
		tablePrefix: tablePrefix,
		dialect:     dialect,
	}
}

// WithTx returns a copy of the queries that runs inside the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:          tx,
		tablePrefix: q.tablePrefix,
		dialect:     q.dialect,
	}
}

var (
	listMapsSQL = `
SELECT filename, detected, forced_old, likes, dislikes
FROM %s_maps
ORDER BY filename ASC;`

	getMapSQL = `
SELECT filename, detected, forced_old, likes, dislikes
FROM %s_maps
WHERE filename = ?;`

	upsertMapSQL = `
INSERT INTO %s_maps (filename, detected, forced_old, likes, dislikes)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (filename)
DO UPDATE SET
    forced_old = EXCLUDED.forced_old,
    likes = EXCLUDED.likes,
    dislikes = EXCLUDED.dislikes;`
)

func (q *Queries) query(template string) string {
	return rebind(q.dialect, fmt.Sprintf(template, q.tablePrefix))
}

// ListMaps returns every stored map, ordered by filename.
func (q *Queries) ListMaps(ctx context.Context) ([]*MapStatsRecord, error) {
	var rows, err = q.db.QueryContext(ctx, q.query(listMapsSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var maps []*MapStatsRecord
	for rows.Next() {
		var (
			record   MapStatsRecord
			detected int64
		)
		if err := rows.Scan(&record.Filename, &detected, &record.ForcedOld, &record.Likes, &record.Dislikes); err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		record.Detected = time.Unix(detected, 0)
		maps = append(maps, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return maps, nil
}

// GetMap retrieves a single map by filename, or nil if it is not stored.
func (q *Queries) GetMap(ctx context.Context, filename string) (*MapStatsRecord, error) {
	var (
		record   MapStatsRecord
		detected int64
		err      = q.db.QueryRowContext(ctx, q.query(getMapSQL), strings.ToLower(filename)).Scan(
			&record.Filename, &detected, &record.ForcedOld, &record.Likes, &record.Dislikes,
		)
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get map: %w", err)
	}

	record.Detected = time.Unix(detected, 0)
	return &record, nil
}

// UpsertMap inserts a map or updates its counters. The detection date of an
// existing row is kept.
func (q *Queries) UpsertMap(ctx context.Context, record *MapStatsRecord) error {
	_, err := q.db.ExecContext(ctx, q.query(upsertMapSQL),
		strings.ToLower(record.Filename), record.Detected.Unix(), record.ForcedOld, record.Likes, record.Dislikes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert map %q: %w", record.Filename, err)
	}
	return nil
}
