package mapcycle

import "time"

// DenialReason explains why a participant action was refused.
type DenialReason int

const (
	Allowed DenialReason = iota
	DeniedDisabled
	DeniedNotInProgress
	DeniedInProgress
	DeniedAlreadyVoted
	DeniedAlreadyNominated
	DeniedAlreadyRTV
	DeniedTooSoon
	DeniedAlreadyRated
	DeniedUnknownParticipant
	DeniedUnknownMap
	DeniedNotSelectable
)

var denialReasonNames = map[DenialReason]string{
	Allowed:                  "allowed",
	DeniedDisabled:           "disabled",
	DeniedNotInProgress:      "not_in_progress",
	DeniedInProgress:         "in_progress",
	DeniedAlreadyVoted:       "already_voted",
	DeniedAlreadyNominated:   "already_nominated",
	DeniedAlreadyRTV:         "rtv_already_used",
	DeniedTooSoon:            "rtv_too_soon",
	DeniedAlreadyRated:       "likemap_already_used",
	DeniedUnknownParticipant: "unknown_participant",
	DeniedUnknownMap:         "unknown_map",
	DeniedNotSelectable:      "not_selectable",
}

func (r DenialReason) String() string {
	if name, ok := denialReasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Denial is the result of a permission check. The zero value allows the action.
type Denial struct {
	Reason DenialReason
	Map    *MapRecord    // previous choice, for already-voted and already-nominated
	Wait   time.Duration // remaining time, for too-soon
}

// Allowed reports whether the action may proceed.
func (d Denial) Allowed() bool {
	return d.Reason == Allowed
}

func deny(reason DenialReason) Denial {
	return Denial{Reason: reason}
}

// voteDenial gates casting a ballot.
func voteDenial(cfg Config, status VoteStatus, p *Participant) Denial {
	if !cfg.VoteEnabled {
		return deny(DeniedDisabled)
	}
	if status != VoteInProgress {
		return deny(DeniedNotInProgress)
	}
	if p.VotedMap != nil && !cfg.AllowRevote {
		return Denial{Reason: DeniedAlreadyVoted, Map: p.VotedMap}
	}
	return Denial{}
}

// nominateDenial gates nominating a map for the next ballot.
func nominateDenial(cfg Config, status VoteStatus, p *Participant) Denial {
	if !cfg.VoteEnabled || !cfg.NominateEnabled {
		return deny(DeniedDisabled)
	}
	if status != VoteNotStarted {
		return deny(DeniedInProgress)
	}
	if p.NominatedMap != nil && !cfg.NominateAllowRevote {
		return Denial{Reason: DeniedAlreadyNominated, Map: p.NominatedMap}
	}
	return Denial{}
}

// rtvDenial gates rocking the vote. RTV opens only once RTVDelay has passed
// since the level started.
func rtvDenial(cfg Config, status VoteStatus, p *Participant, now, levelStart time.Time) Denial {
	if !cfg.VoteEnabled || !cfg.RTVEnabled {
		return deny(DeniedDisabled)
	}
	if status != VoteNotStarted {
		return deny(DeniedInProgress)
	}
	if p.UsedRTV {
		return deny(DeniedAlreadyRTV)
	}
	if wait := levelStart.Add(cfg.RTVDelay).Sub(now); wait > 0 {
		return Denial{Reason: DeniedTooSoon, Wait: wait}
	}
	return Denial{}
}

// ratingDenial gates rating the current level.
func ratingDenial(cfg Config, current Rating) Denial {
	if !cfg.RatingEnabled {
		return deny(DeniedDisabled)
	}
	if current != RatingUnset {
		return deny(DeniedAlreadyRated)
	}
	return Denial{}
}

func nextMapDenial(cfg Config) Denial {
	if !cfg.NextMapEnabled {
		return deny(DeniedDisabled)
	}
	return Denial{}
}

func timeLeftDenial(cfg Config) Denial {
	if !cfg.TimeLeftEnabled {
		return deny(DeniedDisabled)
	}
	return Denial{}
}
