package mapcycle

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// PoolEntry is one map as listed in the pool file.
type PoolEntry struct {
	Filename     string `json:"filename"`
	FullName     string `json:"fullname,omitempty"`
	TimeRestrict string `json:"timerestrict,omitempty"`
}

// MapPool is the set of maps eligible for the current level, plus the extend
// and abstain sentinels.
type MapPool struct {
	maps    map[string]*MapRecord // keyed by lowercase filename
	order   []*MapRecord          // load order
	recent  []string              // lowercase, oldest first
	extend  *MapRecord
	abstain *MapRecord
	names   *NameResolver
}

// NewMapPool creates an empty pool.
func NewMapPool(names *NameResolver) *MapPool {
	return &MapPool{
		maps:    make(map[string]*MapRecord),
		order:   make([]*MapRecord, 0),
		extend:  &MapRecord{Kind: KindExtend},
		abstain: &MapRecord{Kind: KindAbstain},
		names:   names,
	}
}

// Load replaces the pool with the given entries. Entries without a filename,
// duplicates, malformed time restrictions and maps rejected by isLoadable are
// skipped; the returned errors describe every skipped entry.
func (p *MapPool) Load(entries []PoolEntry, isLoadable func(string) bool) []error {
	var rejected []error

	// Clear existing state
	p.maps = make(map[string]*MapRecord, len(entries))
	p.order = make([]*MapRecord, 0, len(entries))

	for i, entry := range entries {
		var filename = strings.TrimSpace(entry.Filename)
		if filename == "" {
			rejected = append(rejected, fmt.Errorf("map #%d: %w", i, ErrMissingFilename))
			continue
		}

		var key = strings.ToLower(filename)
		if _, exists := p.maps[key]; exists {
			rejected = append(rejected, fmt.Errorf("map #%d %q: %w", i, filename, ErrDuplicateMap))
			continue
		}

		if isLoadable != nil && !isLoadable(filename) {
			rejected = append(rejected, fmt.Errorf("map #%d %q: %w", i, filename, ErrInvalidMap))
			continue
		}

		var record = &MapRecord{
			Kind:     KindMap,
			Filename: filename,
			FullName: strings.TrimSpace(entry.FullName),
		}

		if entry.TimeRestrict != "" {
			restriction, err := ParseTimeRestriction(entry.TimeRestrict)
			if err != nil {
				rejected = append(rejected, fmt.Errorf("map #%d %q: %w", i, filename, err))
				continue
			}
			record.Restriction = restriction
		}

		p.maps[key] = record
		p.order = append(p.order, record)
	}

	return rejected
}

// ApplyStats copies durable counters onto the maps they belong to. Stats for
// maps that are not in the pool are ignored.
func (p *MapPool) ApplyStats(stats []MapStats) {
	for _, s := range stats {
		var record, ok = p.maps[strings.ToLower(s.Filename)]
		if !ok {
			continue
		}

		record.InDatabase = true
		record.FirstDetected = s.Detected
		record.ForcedOld = s.ForcedOld
		record.Likes = s.Likes
		record.Dislikes = s.Dislikes
	}
}

// Get looks a map up by filename, case-insensitively.
func (p *MapPool) Get(filename string) (*MapRecord, bool) {
	var record, ok = p.maps[strings.ToLower(filename)]
	return record, ok
}

// Lookup resolves a ballot key: a filename or one of the sentinel keys.
func (p *MapPool) Lookup(key string) (*MapRecord, bool) {
	switch key {
	case ExtendKey:
		return p.extend, true
	case AbstainKey:
		return p.abstain, true
	}
	return p.Get(key)
}

// Maps returns the maps in load order.
func (p *MapPool) Maps() []*MapRecord {
	return slices.Clone(p.order)
}

// Len returns the number of maps, sentinels excluded.
func (p *MapPool) Len() int {
	return len(p.order)
}

// Extend returns the extend sentinel.
func (p *MapPool) Extend() *MapRecord {
	return p.extend
}

// Abstain returns the abstain sentinel.
func (p *MapPool) Abstain() *MapRecord {
	return p.abstain
}

// Name returns the display name of an entry.
func (p *MapPool) Name(m *MapRecord) string {
	return p.names.Name(m)
}

// ResetCounters zeroes votes and nominations on every map and sentinel.
func (p *MapPool) ResetCounters() {
	p.extend.Votes, p.extend.Nominations = 0, 0
	p.abstain.Votes, p.abstain.Nominations = 0, 0
	for _, m := range p.order {
		m.Votes, m.Nominations = 0, 0
	}
}

// SetRecent replaces the recently played history.
func (p *MapPool) SetRecent(history []string) {
	p.recent = make([]string, 0, len(history))
	for _, name := range history {
		p.recent = append(p.recent, strings.ToLower(name))
	}
}

// PlayedRecently reports whether the map is in the recently played history.
func (p *MapPool) PlayedRecently(m *MapRecord) bool {
	if m.IsSentinel() {
		return false
	}
	return slices.Contains(p.recent, m.Key())
}

// Visible returns the maps that are not time-hidden, in load order.
func (p *MapPool) Visible(now time.Time) []*MapRecord {
	var visible = make([]*MapRecord, 0, len(p.order))
	for _, m := range p.order {
		if !IsTimeHidden(m, now) {
			visible = append(visible, m)
		}
	}
	return visible
}

// StatsSnapshot returns the durable fields of every map in the pool.
func (p *MapPool) StatsSnapshot() []MapStats {
	var stats = make([]MapStats, 0, len(p.order))
	for _, m := range p.order {
		stats = append(stats, MapStats{
			Filename:  m.Key(),
			Detected:  m.FirstDetected,
			ForcedOld: m.ForcedOld,
			Likes:     m.Likes,
			Dislikes:  m.Dislikes,
		})
	}
	return stats
}

// FreshnessOf reports whether a map counts as new. Forced-old maps are always
// old, a negative maxAgeDays disables freshness, and maps that have never been
// persisted are new.
func FreshnessOf(m *MapRecord, now time.Time, maxAgeDays int) Freshness {
	if m.IsSentinel() || m.ForcedOld || maxAgeDays < 0 {
		return FreshnessOld
	}

	if !m.InDatabase {
		return FreshnessNew
	}

	var days = int(now.Sub(m.FirstDetected) / (24 * time.Hour))
	if days <= maxAgeDays {
		return FreshnessNew
	}

	return FreshnessOld
}

// RatingOf folds likes and dislikes into a single comparable number.
func RatingOf(m *MapRecord, method RatingMethod) float64 {
	if m.IsSentinel() {
		return 0
	}

	switch method {
	case RatingLikes:
		return float64(m.Likes)
	case RatingBalance:
		return float64(m.Likes - m.Dislikes)
	case RatingRatio:
		if m.Likes == 0 {
			return 0
		}
		if m.Dislikes == 0 {
			return 1
		}
		return float64(m.Likes) / float64(m.Likes+m.Dislikes)
	default:
		return 0
	}
}

// IsTimeHidden reports whether the map's time restriction excludes now.
func IsTimeHidden(m *MapRecord, now time.Time) bool {
	if m.Restriction == nil {
		return false
	}
	return !m.Restriction.Contains(minuteOfDay(now))
}

// CapRecentHistory keeps the last limit entries of a most-recently-played list.
func CapRecentHistory(history []string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	if len(history) <= limit {
		return slices.Clone(history)
	}
	return slices.Clone(history[len(history)-limit:])
}
