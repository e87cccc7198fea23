package mapcycle

import (
	"strings"
	"time"
)

// VoteStatus is the state of the vote session for the current level.
type VoteStatus int

const (
	VoteNotStarted VoteStatus = iota
	VoteInProgress
	VoteEnded
)

func (s VoteStatus) String() string {
	switch s {
	case VoteNotStarted:
		return "not_started"
	case VoteInProgress:
		return "in_progress"
	case VoteEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EntryKind distinguishes real maps from the ballot sentinels.
type EntryKind int

const (
	KindMap EntryKind = iota
	KindExtend
	KindAbstain
)

// Sentinel keys used on ballots in place of a filename.
const (
	ExtendKey  = "@extend"
	AbstainKey = "@abstain"
)

// MapRecord is a single entry of the map pool. Sentinel entries share the
// same vote-counter shape but have no filename and no durable stats.
type MapRecord struct {
	Kind        EntryKind
	Filename    string
	FullName    string // explicit display name override from the pool file
	Votes       int
	Nominations int

	// Durable stats, owned by the stats store.
	Likes         int
	Dislikes      int
	FirstDetected time.Time
	InDatabase    bool
	ForcedOld     bool

	Restriction *TimeRestriction
}

// Key returns the case-insensitive identity of the entry.
func (m *MapRecord) Key() string {
	switch m.Kind {
	case KindExtend:
		return ExtendKey
	case KindAbstain:
		return AbstainKey
	default:
		return strings.ToLower(m.Filename)
	}
}

// IsSentinel reports whether the entry is the extend or abstain pseudo-map.
func (m *MapRecord) IsSentinel() bool {
	return m.Kind != KindMap
}

// Freshness tells whether a map is promoted as new.
type Freshness int

const (
	FreshnessOld Freshness = iota
	FreshnessNew
)

// RatingMethod selects how likes and dislikes are folded into a single rating.
type RatingMethod int

const (
	RatingLikes   RatingMethod = 1 // raw likes
	RatingBalance RatingMethod = 2 // likes minus dislikes
	RatingRatio   RatingMethod = 3 // likes / (likes + dislikes)
)

// Rating is a participant's opinion of the current level.
type Rating int

const (
	RatingUnset   Rating = 0
	RatingLike    Rating = 1
	RatingDislike Rating = -1
)

// Participant is a connected player as seen by the rotation controller.
type Participant struct {
	ID           string
	VotedMap     *MapRecord
	NominatedMap *MapRecord
	UsedRTV      bool
}

// Outcome is the kind of result a finished vote produced.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeExtend
	OutcomeMap
)

// Result is the resolved winner of a vote.
type Result struct {
	Outcome Outcome
	Winner  *MapRecord
	Votes   int
}

// TimeLeftState describes how the current level is going to end.
type TimeLeftState int

const (
	TimeLeftRemaining TimeLeftState = iota
	TimeLeftNever
	TimeLeftLastRound
)
