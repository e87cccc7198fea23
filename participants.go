package mapcycle

import (
	"slices"
)

// ResetMask selects which participant fields a reset clears.
type ResetMask uint8

const (
	ResetVote ResetMask = 1 << iota
	ResetNomination
	ResetRTV

	ResetAll = ResetVote | ResetNomination | ResetRTV
)

// Gate decides whether a participant may perform an action. It must not
// mutate anything.
type Gate func(p *Participant) Denial

// ParticipantRegistry tracks connected participants and their per-round choices.
// Ratings are kept per identity for the whole level so that reconnecting does
// not allow rating twice.
type ParticipantRegistry struct {
	participants map[string]*Participant
	joinOrder    []string
	ratings      map[string]Rating
}

// NewParticipantRegistry creates an empty registry.
func NewParticipantRegistry() *ParticipantRegistry {
	return &ParticipantRegistry{
		participants: make(map[string]*Participant),
		joinOrder:    make([]string, 0),
		ratings:      make(map[string]Rating),
	}
}

// Join registers a participant. Joining twice returns the existing entry.
func (r *ParticipantRegistry) Join(id string) *Participant {
	if p, ok := r.participants[id]; ok {
		return p
	}

	var p = &Participant{ID: id}
	r.participants[id] = p
	r.joinOrder = append(r.joinOrder, id)
	return p
}

// Leave removes a participant. It reports false if the identity was unknown.
func (r *ParticipantRegistry) Leave(id string) bool {
	if _, ok := r.participants[id]; !ok {
		return false
	}

	delete(r.participants, id)
	r.joinOrder = slices.DeleteFunc(r.joinOrder, func(other string) bool {
		return other == id
	})
	return true
}

// Get returns the participant with the given identity.
func (r *ParticipantRegistry) Get(id string) (*Participant, bool) {
	var p, ok = r.participants[id]
	return p, ok
}

// Len returns the number of connected participants.
func (r *ParticipantRegistry) Len() int {
	return len(r.participants)
}

// All returns the participants in join order.
func (r *ParticipantRegistry) All() []*Participant {
	var all = make([]*Participant, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		all = append(all, r.participants[id])
	}
	return all
}

// RecordVote sets the participant's ballot choice if the gate allows it.
func (r *ParticipantRegistry) RecordVote(id string, choice *MapRecord, gate Gate) Denial {
	return r.record(id, gate, func(p *Participant) {
		p.VotedMap = choice
	})
}

// RecordNomination sets the participant's nomination if the gate allows it.
func (r *ParticipantRegistry) RecordNomination(id string, choice *MapRecord, gate Gate) Denial {
	return r.record(id, gate, func(p *Participant) {
		p.NominatedMap = choice
	})
}

// RecordRTV flags the participant as wanting an early vote if the gate allows it.
func (r *ParticipantRegistry) RecordRTV(id string, gate Gate) Denial {
	return r.record(id, gate, func(p *Participant) {
		p.UsedRTV = true
	})
}

// RecordRating stores the participant's opinion of the level if the gate allows it.
func (r *ParticipantRegistry) RecordRating(id string, rating Rating, gate Gate) Denial {
	return r.record(id, gate, func(p *Participant) {
		r.ratings[p.ID] = rating
	})
}

func (r *ParticipantRegistry) record(id string, gate Gate, apply func(p *Participant)) Denial {
	var p, ok = r.participants[id]
	if !ok {
		return Denial{Reason: DeniedUnknownParticipant}
	}

	if gate != nil {
		if denial := gate(p); !denial.Allowed() {
			return denial
		}
	}

	apply(p)
	return Denial{}
}

// RatingOf returns what the participant thinks of the current level.
func (r *ParticipantRegistry) RatingOf(id string) Rating {
	return r.ratings[id]
}

// RTVRatio returns the share of participants that used RTV. ok is false when
// nobody is connected, which never counts as a quorum.
func (r *ParticipantRegistry) RTVRatio() (ratio float64, ok bool) {
	if len(r.participants) == 0 {
		return 0, false
	}

	var used int
	for _, p := range r.participants {
		if p.UsedRTV {
			used++
		}
	}

	return float64(used) / float64(len(r.participants)), true
}

// VoteCompletionComplete reports whether every connected participant voted.
// With nobody connected the vote is not complete; the vote timeout ends it.
func (r *ParticipantRegistry) VoteCompletionComplete() bool {
	if len(r.participants) == 0 {
		return false
	}

	for _, p := range r.participants {
		if p.VotedMap == nil {
			return false
		}
	}
	return true
}

// NominatedMaps returns one entry per participant nomination, in join order.
func (r *ParticipantRegistry) NominatedMaps() []*MapRecord {
	var maps = make([]*MapRecord, 0)
	for _, p := range r.All() {
		if p.NominatedMap != nil {
			maps = append(maps, p.NominatedMap)
		}
	}
	return maps
}

// VotedMaps returns one entry per participant vote, in join order.
func (r *ParticipantRegistry) VotedMaps() []*MapRecord {
	var maps = make([]*MapRecord, 0)
	for _, p := range r.All() {
		if p.VotedMap != nil {
			maps = append(maps, p.VotedMap)
		}
	}
	return maps
}

// ResetForNewRound clears the selected fields on every participant.
func (r *ParticipantRegistry) ResetForNewRound(mask ResetMask) {
	for _, p := range r.participants {
		if mask&ResetVote != 0 {
			p.VotedMap = nil
		}
		if mask&ResetNomination != 0 {
			p.NominatedMap = nil
		}
		if mask&ResetRTV != 0 {
			p.UsedRTV = false
		}
	}
}

// ResetForNewLevel clears every per-round field and forgets the level ratings.
func (r *ParticipantRegistry) ResetForNewLevel() {
	r.ResetForNewRound(ResetAll)
	r.ratings = make(map[string]Rating)
}

// TakeRatings returns the like and dislike counts for the level and clears them.
func (r *ParticipantRegistry) TakeRatings() (likes, dislikes int) {
	for _, rating := range r.ratings {
		switch rating {
		case RatingLike:
			likes++
		case RatingDislike:
			dislikes++
		}
	}

	r.ratings = make(map[string]Rating)
	return likes, dislikes
}
