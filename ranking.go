package mapcycle

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

// rankCandidates orders the visible maps for a ballot. Each key is applied as
// its own stable sort, so a later sort wins and earlier ones only break its
// ties: base order, then rating, freshness, nominations, and finally recently
// played maps go last. The result is truncated to cfg.MaxOptions.
func rankCandidates(pool *MapPool, candidates []*MapRecord, cfg Config, now time.Time, rng *rand.Rand) []*MapRecord {
	var ranked = slices.Clone(candidates)

	if cfg.AlphabeticSort {
		var keyOf = func(m *MapRecord) string {
			if cfg.AlphabeticSortByFullName {
				return strings.ToLower(pool.Name(m))
			}
			return strings.ToLower(m.Filename)
		}
		slices.SortStableFunc(ranked, func(a, b *MapRecord) int {
			return cmp.Compare(keyOf(a), keyOf(b))
		})
	} else {
		rng.Shuffle(len(ranked), func(i, j int) {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		})
	}

	if cfg.RatingEnabled {
		slices.SortStableFunc(ranked, func(a, b *MapRecord) int {
			return cmp.Compare(RatingOf(b, cfg.RatingMethod), RatingOf(a, cfg.RatingMethod))
		})
	}

	slices.SortStableFunc(ranked, func(a, b *MapRecord) int {
		return cmp.Compare(FreshnessOf(b, now, cfg.NewMapTimeoutDays), FreshnessOf(a, now, cfg.NewMapTimeoutDays))
	})

	slices.SortStableFunc(ranked, func(a, b *MapRecord) int {
		return cmp.Compare(b.Nominations, a.Nominations)
	})

	slices.SortStableFunc(ranked, func(a, b *MapRecord) int {
		return compareBool(pool.PlayedRecently(a), pool.PlayedRecently(b))
	})

	if cfg.MaxOptions > 0 && len(ranked) > cfg.MaxOptions {
		ranked = ranked[:cfg.MaxOptions]
	}

	return ranked
}

// pickWinner keeps the entries sharing the highest vote count and picks one of
// them uniformly at random.
func pickWinner(candidates []*MapRecord, rng *rand.Rand) *MapRecord {
	if len(candidates) == 0 {
		return nil
	}

	var sorted = slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b *MapRecord) int {
		return cmp.Compare(b.Votes, a.Votes)
	})

	var ties = 1
	for ties < len(sorted) && sorted[ties].Votes == sorted[0].Votes {
		ties++
	}

	return sorted[rng.IntN(ties)]
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
