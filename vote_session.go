package mapcycle

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// BallotOption is one line of the ballot presented to participants.
type BallotOption struct {
	Key         string
	Name        string
	Entry       *MapRecord
	Selectable  bool
	Recent      bool
	New         bool
	Nominations int
	Rating      float64
}

// Ballot is the ranked list of options of one vote.
type Ballot struct {
	ID        string
	Scheduled bool
	Options   []BallotOption
}

// Option finds an option by key.
func (b Ballot) Option(key string) (BallotOption, bool) {
	for _, option := range b.Options {
		if option.Key == key {
			return option, true
		}
	}
	return BallotOption{}, false
}

// VoteSession is the vote state machine of one level:
// NOT_STARTED -> IN_PROGRESS -> ENDED -> NOT_STARTED.
type VoteSession struct {
	status          VoteStatus
	startedAt       time.Time
	usedExtends     int
	nextMap         *MapRecord
	roundEndPending bool
	ballot          Ballot
	config          Config
	rng             *rand.Rand
}

// NewVoteSession creates a session in the NOT_STARTED state.
func NewVoteSession(cfg Config, rng *rand.Rand) *VoteSession {
	return &VoteSession{
		status: VoteNotStarted,
		config: cfg,
		rng:    rng,
	}
}

// Status returns the current state.
func (s *VoteSession) Status() VoteStatus {
	return s.status
}

// StartedAt returns when the running or last vote was launched.
func (s *VoteSession) StartedAt() time.Time {
	return s.startedAt
}

// UsedExtends returns how many times the level was extended.
func (s *VoteSession) UsedExtends() int {
	return s.usedExtends
}

// CanExtend reports whether the extend budget has room left.
func (s *VoteSession) CanExtend() bool {
	return s.usedExtends < s.config.MaxExtends
}

// NextMap returns the resolved winner, or nil while undecided.
func (s *VoteSession) NextMap() *MapRecord {
	return s.nextMap
}

// Ballot returns the ballot of the running or last vote.
func (s *VoteSession) Ballot() Ballot {
	return s.ballot
}

// RoundEndPending reports whether the level ends at the next round end.
func (s *VoteSession) RoundEndPending() bool {
	return s.roundEndPending
}

func (s *VoteSession) setRoundEndPending(pending bool) {
	s.roundEndPending = pending
}

// Launch starts a vote and builds its ballot. It fails with
// ErrVoteAlreadyStarted unless the session is NOT_STARTED, and with
// ErrNoEligibleMaps when every map is hidden; in both cases the session and
// the participants' nominations are left as they were.
func (s *VoteSession) Launch(pool *MapPool, participants *ParticipantRegistry, scheduled bool, now time.Time) (Ballot, error) {
	if s.status != VoteNotStarted {
		return Ballot{}, ErrVoteAlreadyStarted
	}

	pool.ResetCounters()

	var candidates = pool.Visible(now)
	if len(candidates) == 0 {
		return Ballot{}, ErrNoEligibleMaps
	}

	for _, m := range participants.NominatedMaps() {
		m.Nominations++
	}
	participants.ResetForNewRound(ResetNomination)

	var (
		ranked  = rankCandidates(pool, candidates, s.config, now, s.rng)
		options = make([]BallotOption, 0, len(ranked)+2)
	)

	if s.config.AbstainOption {
		options = append(options, s.sentinelOption(pool, pool.Abstain()))
	}

	if scheduled && s.CanExtend() {
		options = append(options, s.sentinelOption(pool, pool.Extend()))
	}

	for _, m := range ranked {
		var recent = pool.PlayedRecently(m)
		options = append(options, BallotOption{
			Key:         m.Key(),
			Name:        pool.Name(m),
			Entry:       m,
			Selectable:  !recent,
			Recent:      recent,
			New:         FreshnessOf(m, now, s.config.NewMapTimeoutDays) == FreshnessNew,
			Nominations: m.Nominations,
			Rating:      RatingOf(m, s.config.RatingMethod),
		})
	}

	s.ballot = Ballot{
		ID:        uuid.NewString(),
		Scheduled: scheduled,
		Options:   options,
	}
	s.status = VoteInProgress
	s.startedAt = now

	return s.ballot, nil
}

func (s *VoteSession) sentinelOption(pool *MapPool, entry *MapRecord) BallotOption {
	return BallotOption{
		Key:        entry.Key(),
		Name:       pool.Name(entry),
		Entry:      entry,
		Selectable: true,
	}
}

// Finish ends the running vote, tallies the participants' ballots and
// resolves the winner. Votes and RTV flags are cleared whatever the outcome,
// and the session is back to NOT_STARTED afterwards. It fails with
// ErrVoteNotRunning unless a vote is in progress, and with ErrNothingToChoose
// when there is no candidate at all.
func (s *VoteSession) Finish(pool *MapPool, participants *ParticipantRegistry, now time.Time) (Result, error) {
	if s.status != VoteInProgress {
		return Result{}, ErrVoteNotRunning
	}
	s.status = VoteEnded

	// Tally from participant state so that joins and leaves during the vote count correctly
	pool.Extend().Votes = 0
	pool.Abstain().Votes = 0
	for _, m := range pool.Maps() {
		m.Votes = 0
	}
	for _, m := range participants.VotedMaps() {
		m.Votes++
	}
	// The RTV quorum that may have started this vote is spent once it resolves
	participants.ResetForNewRound(ResetVote | ResetRTV)

	var candidates = pool.Visible(now)
	if s.CanExtend() {
		candidates = append(candidates, pool.Extend())
	}

	s.status = VoteNotStarted

	var winner = pickWinner(candidates, s.rng)
	if winner == nil {
		return Result{Outcome: OutcomeNone}, ErrNothingToChoose
	}

	if winner.Kind == KindExtend {
		s.usedExtends++
		return Result{Outcome: OutcomeExtend, Winner: winner, Votes: winner.Votes}, nil
	}

	s.nextMap = winner
	return Result{Outcome: OutcomeMap, Winner: winner, Votes: winner.Votes}, nil
}
