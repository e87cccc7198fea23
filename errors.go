package mapcycle

import "errors"

var (
	// ErrNoEligibleMaps is returned when a vote cannot be launched because every map is hidden.
	ErrNoEligibleMaps = errors.New("no eligible maps to vote on")

	// ErrNothingToChoose is returned when a finished vote has no candidate to pick a winner from.
	ErrNothingToChoose = errors.New("nothing to choose from")

	// ErrVoteAlreadyStarted is returned by a forced launch while a vote is running.
	ErrVoteAlreadyStarted = errors.New("vote has already started")

	// ErrVoteNotRunning is returned when finishing a vote that is not in progress.
	ErrVoteNotRunning = errors.New("vote is not in progress")

	// ErrMissingFilename is reported for pool entries without a filename.
	ErrMissingFilename = errors.New("missing filename")

	// ErrDuplicateMap is reported for pool entries whose filename is already in the pool.
	ErrDuplicateMap = errors.New("duplicate map")

	// ErrInvalidMap is reported for pool entries the host cannot load.
	ErrInvalidMap = errors.New("map is not loadable")

	// ErrInvalidTimeRestriction is reported for malformed "HH:MM,HH:MM" values.
	ErrInvalidTimeRestriction = errors.New("invalid time restriction")

	// ErrControllerNotStarted is returned when stopping a controller that was never started.
	ErrControllerNotStarted = errors.New("controller not started")
)
