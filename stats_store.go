package mapcycle

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go-mapcycle/database"
)

// MapStats is the durable part of a map record.
type MapStats struct {
	Filename  string
	Detected  time.Time
	ForcedOld bool
	Likes     int
	Dislikes  int
}

// StatsStore persists map stats. SaveAll upserts by lowercase filename.
type StatsStore interface {
	LoadAll(ctx context.Context) ([]MapStats, error)
	SaveAll(ctx context.Context, stats []MapStats) error
}

// MemoryStatsStore keeps stats in process memory.
type MemoryStatsStore struct {
	mu    sync.Mutex
	stats map[string]MapStats
}

// NewMemoryStatsStore creates an empty in-memory store.
func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		stats: make(map[string]MapStats),
	}
}

// LoadAll returns every stored map, ordered by filename.
func (s *MemoryStatsStore) LoadAll(_ context.Context) ([]MapStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all = make([]MapStats, 0, len(s.stats))
	for _, stats := range s.stats {
		all = append(all, stats)
	}
	slices.SortFunc(all, func(a, b MapStats) int {
		return strings.Compare(a.Filename, b.Filename)
	})
	return all, nil
}

// SaveAll upserts the given stats. The detection date of a stored map is kept.
func (s *MemoryStatsStore) SaveAll(_ context.Context, stats []MapStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range stats {
		var key = strings.ToLower(entry.Filename)
		entry.Filename = key
		if existing, ok := s.stats[key]; ok {
			entry.Detected = existing.Detected
		}
		s.stats[key] = entry
	}
	return nil
}

// SQLStatsStore handles all database operations for map stats.
type SQLStatsStore struct {
	db      *sql.DB
	queries *database.Queries
}

// NewSQLStatsStore creates a store over the <tablePrefix>_maps table. Call
// database.Migrate first.
func NewSQLStatsStore(db *sql.DB, tablePrefix string, dialect database.Dialect) (*SQLStatsStore, error) {
	if err := database.ValidateTablePrefix(tablePrefix); err != nil {
		return nil, err
	}

	return &SQLStatsStore{
		db:      db,
		queries: database.NewQueries(db, tablePrefix, dialect),
	}, nil
}

// LoadAll returns every stored map.
func (s *SQLStatsStore) LoadAll(ctx context.Context) ([]MapStats, error) {
	var records, err = s.queries.ListMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load map stats: %w", err)
	}

	var stats = make([]MapStats, len(records))
	for i, record := range records {
		stats[i] = toMapStats(record)
	}

	return stats, nil
}

// Load returns the stored stats of one map. ok is false when the map was
// never saved.
func (s *SQLStatsStore) Load(ctx context.Context, filename string) (stats MapStats, ok bool, err error) {
	record, err := s.queries.GetMap(ctx, filename)
	if err != nil {
		return MapStats{}, false, fmt.Errorf("failed to load map stats: %w", err)
	}
	if record == nil {
		return MapStats{}, false, nil
	}

	return toMapStats(record), true, nil
}

// SaveAll upserts the given stats in a single transaction.
func (s *SQLStatsStore) SaveAll(ctx context.Context, stats []MapStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var queries = s.queries.WithTx(tx)
	for _, entry := range stats {
		var record = &database.MapStatsRecord{
			Filename:  entry.Filename,
			Detected:  entry.Detected,
			ForcedOld: entry.ForcedOld,
			Likes:     entry.Likes,
			Dislikes:  entry.Dislikes,
		}

		if err := queries.UpsertMap(ctx, record); err != nil {
			return fmt.Errorf("failed to save map stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats transaction: %w", err)
	}

	return nil
}

func toMapStats(record *database.MapStatsRecord) MapStats {
	return MapStats{
		Filename:  record.Filename,
		Detected:  record.Detected,
		ForcedOld: record.ForcedOld,
		Likes:     record.Likes,
		Dislikes:  record.Dislikes,
	}
}
