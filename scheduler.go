package mapcycle

import (
	"time"
)

// timerKind identifies one of the scheduler's timers.
type timerKind int

const (
	timerScheduledVote timerKind = iota
	timerVoteTimeout
	timerLevelChange
	timerRatingSurvey

	timerKindCount
)

var timerKindNames = [timerKindCount]string{
	timerScheduledVote: "scheduled_vote",
	timerVoteTimeout:   "vote_timeout",
	timerLevelChange:   "level_change",
	timerRatingSurvey:  "rating_survey",
}

func (k timerKind) String() string {
	if k < 0 || k >= timerKindCount {
		return "unknown"
	}
	return timerKindNames[k]
}

// timerSlot holds the live timer of one kind. Every arm and cancel bumps gen,
// and a firing callback only runs if the generation it captured is current.
type timerSlot struct {
	gen      uint64
	armed    bool
	deadline time.Time
	timer    Timer
}

// schedulerHooks are the callbacks the scheduler fires. They run through the
// dispatch function, so they see the same locking as every other event.
type schedulerHooks struct {
	scheduledVote func()
	voteTimeout   func()
	levelChange   func()
	ratingSurvey  func()

	// leadClamped reports that the scheduled-vote lead did not fit the budget.
	leadClamped func(configured, clamped time.Duration)
}

// Scheduler owns the rotation timers. It is not safe for concurrent use; the
// controller only touches it while holding its own lock, and timer firings are
// routed back into that lock through dispatch.
type Scheduler struct {
	clock     Clock
	dispatch  func(fn func())
	hooks     schedulerHooks
	slots     [timerKindCount]timerSlot
	timeLimit time.Duration
	config    Config
}

// newScheduler creates a scheduler for one level. timeLimit is the resolved
// level duration; zero disables scheduled votes and level changes.
func newScheduler(clock Clock, cfg Config, timeLimit time.Duration, dispatch func(fn func()), hooks schedulerHooks) *Scheduler {
	return &Scheduler{
		clock:     clock,
		dispatch:  dispatch,
		hooks:     hooks,
		timeLimit: timeLimit,
		config:    cfg,
	}
}

// ScheduleLevelChange arms the level-change timer for the full level (or the
// extension) plus a short grace period. It reports false when the time limit
// disables level changes.
func (s *Scheduler) ScheduleLevelChange(extended bool) bool {
	if s.timeLimit == 0 {
		return false
	}

	s.arm(timerLevelChange, s.budget(extended)+graceAfterVote, s.hooks.levelChange)
	return true
}

// ScheduleLevelChangeIn arms the level-change timer to fire after d.
func (s *Scheduler) ScheduleLevelChangeIn(d time.Duration) {
	s.arm(timerLevelChange, d, s.hooks.levelChange)
}

// ScheduleVote arms the scheduled-vote timer so that the vote ends
// ScheduledVoteLead before the budget runs out, and the rating survey
// RatingSurveyDuration before the vote. A lead that does not fit the budget is
// replaced by a fraction of the budget. It reports false when the time limit
// disables scheduled votes.
func (s *Scheduler) ScheduleVote(extended bool) bool {
	if s.timeLimit == 0 {
		return false
	}

	var (
		budget = s.budget(extended)
		lead   = s.config.ScheduledVoteLead
	)

	if lead >= budget {
		var clamped = time.Duration(float64(budget) * leadFallbackFraction)
		if s.hooks.leadClamped != nil {
			s.hooks.leadClamped(lead, clamped)
		}
		s.config.ScheduledVoteLead = clamped
		lead = clamped
	}

	var delay = max(budget-lead-s.config.VoteDuration, 0)
	s.arm(timerScheduledVote, delay, s.hooks.scheduledVote)

	if s.config.RatingEnabled && s.config.RatingSurveyDuration > 0 {
		s.arm(timerRatingSurvey, max(delay-s.config.RatingSurveyDuration, 0), s.hooks.ratingSurvey)
	}

	return true
}

// ArmVoteTimeout arms the timer that ends a running vote after VoteDuration.
func (s *Scheduler) ArmVoteTimeout() {
	s.arm(timerVoteTimeout, s.config.VoteDuration, s.hooks.voteTimeout)
}

// Cancel stops the timer of the given kind. Cancelling a timer that is not
// running, already fired or already cancelled does nothing.
func (s *Scheduler) Cancel(kind timerKind) {
	var slot = &s.slots[kind]
	slot.gen++
	slot.armed = false
	if slot.timer != nil {
		slot.timer.Stop()
		slot.timer = nil
	}
}

// CancelAll stops every timer.
func (s *Scheduler) CancelAll() {
	for kind := range timerKindCount {
		s.Cancel(kind)
	}
}

// Running reports whether the timer of the given kind is armed.
func (s *Scheduler) Running(kind timerKind) bool {
	return s.slots[kind].armed
}

// Deadline returns when the timer of the given kind fires. ok is false when
// the timer is not armed.
func (s *Scheduler) Deadline(kind timerKind) (deadline time.Time, ok bool) {
	var slot = s.slots[kind]
	if !slot.armed {
		return time.Time{}, false
	}
	return slot.deadline, true
}

// TimeLimit returns the resolved level duration.
func (s *Scheduler) TimeLimit() time.Duration {
	return s.timeLimit
}

func (s *Scheduler) budget(extended bool) time.Duration {
	if extended {
		return s.config.ExtendTime
	}
	return s.timeLimit
}

func (s *Scheduler) arm(kind timerKind, d time.Duration, fire func()) {
	s.Cancel(kind)

	var slot = &s.slots[kind]
	var gen = slot.gen

	slot.armed = true
	slot.deadline = s.clock.Now().Add(d)
	slot.timer = s.clock.AfterFunc(d, func() {
		s.dispatch(func() {
			// Superseded or cancelled after the timer already fired
			if !slot.armed || slot.gen != gen {
				return
			}
			slot.armed = false
			slot.timer = nil

			if fire != nil {
				fire()
			}
		})
	})
}
