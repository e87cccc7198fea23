package mapcycle

// EventKind names a structured message the controller asks the host to show.
// The host owns wording and localization; the controller only sends the kind
// and its parameters.
type EventKind string

const (
	EventLoaded         EventKind = "loaded"
	EventVoteStarted    EventKind = "vote_started"
	EventVoteCast       EventKind = "vote_cast"
	EventMapWon         EventKind = "map_won"
	EventMapExtended    EventKind = "map_extended"
	EventNoChoice       EventKind = "no_choice"
	EventNoEligibleMaps EventKind = "no_eligible_maps"
	EventNominated      EventKind = "nominated"
	EventUsedRTV        EventKind = "used_rtv"
	EventRated          EventKind = "rated"
	EventLastRound      EventKind = "timeleft_last_round"
	EventTimeLeft       EventKind = "timeleft_timeleft"
	EventTimeLeftNever  EventKind = "timeleft_never"
	EventNextMap        EventKind = "nextmap_is"
	EventNextMapUnknown EventKind = "nextmap_unknown"
	EventConfigWarning  EventKind = "config_warning"
	EventDenied         EventKind = "denied"
)

// Event is a message kind plus its parameters.
type Event struct {
	Kind   EventKind
	Params map[string]string
}

// MenuKind identifies a selection menu.
type MenuKind string

const (
	MenuBallot     MenuKind = "ballot"
	MenuNomination MenuKind = "nomination"
	MenuRating     MenuKind = "rating"
)

// MenuOption is one line of a selection menu. Key is what the participant
// sends back: a ballot key, a filename or a rating.
type MenuOption struct {
	Key        string
	Label      string
	Selectable bool
}

// Menu is a selection presented to a participant.
type Menu struct {
	Kind     MenuKind
	BallotID string
	Options  []MenuOption
}

// Host is the game server side of the rotation. The controller calls it while
// holding its lock, so implementations must not call back into the
// controller synchronously.
type Host interface {
	// PresentSelection shows a menu to one participant.
	PresentSelection(participantID string, menu Menu)
	// DismissSelection closes a menu for everybody.
	DismissSelection(kind MenuKind)
	// Broadcast sends an event to every participant.
	Broadcast(event Event)
	// Notify sends an event to one participant.
	Notify(participantID string, event Event)
	// LoadMap switches the server to the given map now.
	LoadMap(filename string)
	// EndLevel ends the current level; the host then loads the next map.
	EndLevel()
}

func event(kind EventKind, kv ...string) Event {
	var params = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		params[kv[i]] = kv[i+1]
	}
	return Event{Kind: kind, Params: params}
}
