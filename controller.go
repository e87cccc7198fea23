package mapcycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Controller drives the map rotation of one game server. It reacts to the
// host's level lifecycle and participant actions, runs the votes and tells the
// host when to change the level.
//
// All methods are safe for concurrent use. Timer callbacks take the same lock
// as host events, so every state transition runs to completion on its own.
type Controller struct {
	mu      sync.Mutex
	host    Host
	source  PoolSource
	options options
	logger  *slog.Logger
	rng     *rand.Rand
	names   *NameResolver

	timeLimit    time.Duration
	participants *ParticipantRegistry
	recent       []string
	level        *level

	stats   map[string]MapStats
	worker  *statsWorker
	started bool
}

// level is the state that lives for exactly one loaded level.
type level struct {
	name      string
	current   *MapRecord
	startedAt time.Time
	pool      *MapPool
	session   *VoteSession
	scheduler *Scheduler
}

// State is a read-only view of the controller.
type State struct {
	Level        string
	Status       VoteStatus
	NextMap      string
	UsedExtends  int
	Participants int
	RTVRatio     float64
	TimeLeft     TimeLeftState
	Remaining    time.Duration
	Ballot       Ballot
}

// NewController creates a controller. The pool source is read on every level load.
func NewController(host Host, source PoolSource, opts ...Option) (*Controller, error) {
	var options = defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if err := options.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if !options.seeded {
		seed, err := newSeed()
		if err != nil {
			return nil, err
		}
		options.seed = seed
	}

	var c = &Controller{
		host:         host,
		source:       source,
		options:      options,
		logger:       options.logger,
		rng:          rand.New(rand.NewPCG(options.seed, options.seed)),
		names:        newNameResolver(options.config, options.nameTable),
		participants: NewParticipantRegistry(),
		recent:       make([]string, 0),
		stats:        make(map[string]MapStats),
		worker:       newStatsWorker(options.stats, options.logger),
	}
	c.timeLimit = c.resolveTimeLimit()
	c.level = c.newLevel("", NewMapPool(c.names))

	return c, nil
}

// Start loads the stored map stats and starts the background stats writer.
func (c *Controller) Start(ctx context.Context) error {
	var stats, err = c.options.stats.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load map stats: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range stats {
		c.stats[strings.ToLower(s.Filename)] = s
	}
	c.level.pool.ApplyStats(stats)

	c.worker.start()
	c.started = true

	c.logger.Info("map cycle started",
		"stored_maps", len(stats),
		"time_limit", c.timeLimit)
	c.host.Broadcast(event(EventLoaded))

	return nil
}

// Stop cancels every timer and saves the map stats synchronously.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrControllerNotStarted
	}
	c.started = false
	c.level.scheduler.CancelAll()
	var stats = c.snapshotStats()
	c.mu.Unlock()

	if err := c.worker.stop(ctx); err != nil {
		return fmt.Errorf("failed to stop stats worker: %w", err)
	}

	if err := c.options.stats.SaveAll(ctx, stats); err != nil {
		return fmt.Errorf("failed to save map stats: %w", err)
	}

	c.logger.Info("map cycle stopped", "saved_maps", len(stats))
	return nil
}

// OnLevelLoaded starts a new level: the pool is rebuilt from the source, the
// per-level participant state is reset and the vote and level change are
// scheduled. A failing pool source leaves the level with an empty pool.
func (c *Controller) OnLevelLoaded(ctx context.Context, mapName string) error {
	var entries, sourceErr = c.source.Entries(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.level.scheduler.CancelAll()

	var pool = NewMapPool(c.names)
	if sourceErr == nil {
		for _, err := range pool.Load(entries, c.options.isLoadable) {
			c.logger.Warn("skipped map entry", "error", err)
		}
		pool.ApplyStats(c.statsList())
	}

	c.participants.ResetForNewLevel()

	if mapName != "" {
		c.recent = append(c.recent, mapName)
	}
	c.recent = CapRecentHistory(c.recent, c.options.config.RecentMapsLimit)
	pool.SetRecent(c.recent)

	c.level = c.newLevel(mapName, pool)
	if c.level.current == nil {
		c.logger.Debug("current map is not in the map list", "map", mapName)
	}

	c.level.scheduler.ScheduleVote(false)
	c.level.scheduler.ScheduleLevelChange(false)

	c.logger.Debug("level loaded",
		"map", mapName,
		"pool_size", pool.Len(),
		"recent", c.recent)

	if sourceErr != nil {
		return fmt.Errorf("failed to load map list: %w", sourceErr)
	}
	return nil
}

// OnLevelUnloading folds the level ratings into the current map and hands a
// stats snapshot to the background writer.
func (c *Controller) OnLevelUnloading() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.level.scheduler.CancelAll()
	c.host.DismissSelection(MenuBallot)
	c.host.DismissSelection(MenuRating)

	var likes, dislikes = c.participants.TakeRatings()
	if current := c.level.current; current != nil {
		current.Likes += likes
		current.Dislikes += dislikes
	}

	var stats = c.snapshotStats()
	if c.started {
		c.worker.enqueue(stats)
	}

	c.logger.Debug("level unloading",
		"map", c.level.name,
		"likes", likes,
		"dislikes", dislikes)
}

// OnRoundEnded changes the level if it was waiting for the round to end.
func (c *Controller) OnRoundEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.level.session.RoundEndPending() {
		return
	}

	c.logger.Debug("round ended, time to change the level")
	c.level.session.setRoundEndPending(false)
	c.changeLevel(true)
}

// OnMatchEnded finishes a vote that is still running and announces the next map.
func (c *Controller) OnMatchEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.level.session.Status() == VoteInProgress {
		c.logger.Debug("match ended while the vote was in progress, finishing")
		c.finishVote()
	}

	var next = c.level.session.NextMap()
	if next == nil {
		c.logger.Debug("match ended without a next map")
		return
	}

	if c.options.config.NextMapShowOnMatchEnd {
		c.host.Broadcast(event(EventNextMap, "map", c.level.pool.Name(next)))
	}
}

// OnParticipantJoined registers a participant.
func (c *Controller) OnParticipantJoined(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.participants.Join(id)
}

// OnParticipantDisconnected removes a participant and re-checks the quorums
// that the departure may have completed.
func (c *Controller) OnParticipantDisconnected(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.participants.Leave(id) {
		return
	}

	switch c.level.session.Status() {
	case VoteNotStarted:
		c.checkRTV()
	case VoteInProgress:
		c.checkVoteCompletion()
	}
}

// Vote casts the participant's ballot for the option with the given key.
func (c *Controller) Vote(id, key string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		session       = c.level.session
		option, found = session.Ballot().Option(key)
	)

	var denial = c.participants.RecordVote(id, option.Entry, func(p *Participant) Denial {
		if d := voteDenial(c.options.config, session.Status(), p); !d.Allowed() {
			return d
		}
		if !found {
			return deny(DeniedUnknownMap)
		}
		if !option.Selectable {
			return deny(DeniedNotSelectable)
		}
		return Denial{}
	})
	if !denial.Allowed() {
		return c.refuse(id, denial)
	}

	c.announceVote(id, option.Entry)
	c.checkVoteCompletion()
	return denial
}

// Nominate proposes a map for the next ballot.
func (c *Controller) Nominate(id, filename string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		pool          = c.level.pool
		session       = c.level.session
		choice, found = pool.Get(filename)
	)

	var denial = c.participants.RecordNomination(id, choice, func(p *Participant) Denial {
		if d := nominateDenial(c.options.config, session.Status(), p); !d.Allowed() {
			return d
		}
		if !found {
			return deny(DeniedUnknownMap)
		}
		if pool.PlayedRecently(choice) {
			return deny(DeniedNotSelectable)
		}
		return Denial{}
	})
	if !denial.Allowed() {
		return c.refuse(id, denial)
	}

	c.host.Broadcast(event(EventNominated, "participant", id, "map", pool.Name(choice)))
	return denial
}

// RockTheVote asks for an early vote. The vote is launched once the share of
// participants asking for it reaches RTVNeeded.
func (c *Controller) RockTheVote(id string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		now     = c.options.clock.Now()
		session = c.level.session
	)

	var denial = c.participants.RecordRTV(id, func(p *Participant) Denial {
		return rtvDenial(c.options.config, session.Status(), p, now, c.level.startedAt)
	})
	if !denial.Allowed() {
		return c.refuse(id, denial)
	}

	c.host.Broadcast(event(EventUsedRTV, "participant", id))
	c.checkRTV()
	return denial
}

// RateMap records the participant's opinion of the current level. An unset
// rating is accepted and changes nothing.
func (c *Controller) RateMap(id string, rating Rating) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	var denial = c.participants.RecordRating(id, rating, func(p *Participant) Denial {
		return ratingDenial(c.options.config, c.participants.RatingOf(p.ID))
	})
	if !denial.Allowed() {
		return c.refuse(id, denial)
	}

	if rating != RatingUnset {
		c.host.Notify(id, event(EventRated, "rating", strconv.Itoa(int(rating))))
	}
	return denial
}

// OpenBallot shows the running vote's ballot to the participant.
func (c *Controller) OpenBallot(id string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	var p, ok = c.participants.Get(id)
	if !ok {
		return deny(DeniedUnknownParticipant)
	}

	if d := voteDenial(c.options.config, c.level.session.Status(), p); !d.Allowed() {
		return c.refuse(id, d)
	}

	c.host.PresentSelection(id, c.ballotMenu())
	return Denial{}
}

// OpenNominations shows the nomination menu to the participant.
func (c *Controller) OpenNominations(id string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	var p, ok = c.participants.Get(id)
	if !ok {
		return deny(DeniedUnknownParticipant)
	}

	if d := nominateDenial(c.options.config, c.level.session.Status(), p); !d.Allowed() {
		return c.refuse(id, d)
	}

	c.host.PresentSelection(id, c.nominationMenu())
	return Denial{}
}

// OpenRatingMenu shows the like/dislike menu to the participant.
func (c *Controller) OpenRatingMenu(id string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.participants.Get(id); !ok {
		return deny(DeniedUnknownParticipant)
	}

	if d := ratingDenial(c.options.config, c.participants.RatingOf(id)); !d.Allowed() {
		return c.refuse(id, d)
	}

	c.host.PresentSelection(id, c.ratingMenu())
	return Denial{}
}

// TellNextMap tells the participant which map comes next.
func (c *Controller) TellNextMap(id string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d := nextMapDenial(c.options.config); !d.Allowed() {
		return c.refuse(id, d)
	}

	var next = c.level.session.NextMap()
	if next == nil {
		c.host.Notify(id, event(EventNextMapUnknown))
	} else {
		c.host.Notify(id, event(EventNextMap, "map", c.level.pool.Name(next)))
	}
	return Denial{}
}

// TellTimeLeft tells the participant how the current level is going to end.
func (c *Controller) TellTimeLeft(id string) Denial {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d := timeLeftDenial(c.options.config); !d.Allowed() {
		return c.refuse(id, d)
	}

	switch state, remaining := c.timeLeft(); state {
	case TimeLeftNever:
		c.host.Notify(id, event(EventTimeLeftNever))
	case TimeLeftLastRound:
		c.host.Notify(id, event(EventLastRound))
	default:
		c.host.Notify(id, event(EventTimeLeft, "timeleft", formatClock(remaining)))
	}
	return Denial{}
}

// LaunchVote starts a vote right away. Forced votes never offer to extend
// the level.
func (c *Controller) LaunchVote() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.level.session.Status() != VoteNotStarted {
		return ErrVoteAlreadyStarted
	}

	return c.launchVote(false)
}

// NextMap returns the filename of the map the host should load next.
func (c *Controller) NextMap() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next = c.level.session.NextMap()
	if next == nil {
		return "", false
	}
	return next.Filename, true
}

// TimeLeft reports how the current level is going to end and, for a timed
// level, how long it has left.
func (c *Controller) TimeLeft() (TimeLeftState, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.timeLeft()
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var session = c.level.session

	ratio, _ := c.participants.RTVRatio()
	state, remaining := c.timeLeft()

	var next string
	if m := session.NextMap(); m != nil {
		next = m.Filename
	}

	return State{
		Level:        c.level.name,
		Status:       session.Status(),
		NextMap:      next,
		UsedExtends:  session.UsedExtends(),
		Participants: c.participants.Len(),
		RTVRatio:     ratio,
		TimeLeft:     state,
		Remaining:    remaining,
		Ballot:       session.Ballot(),
	}
}

func (c *Controller) newLevel(name string, pool *MapPool) *level {
	var l = &level{
		name:      name,
		startedAt: c.options.clock.Now(),
		pool:      pool,
		session:   NewVoteSession(c.options.config, c.rng),
	}
	if name != "" {
		l.current, _ = pool.Get(name)
	}

	l.scheduler = newScheduler(c.options.clock, c.options.config, c.timeLimit, c.dispatch, schedulerHooks{
		scheduledVote: func() { c.onScheduledVote(l) },
		voteTimeout:   func() { c.onVoteTimeout(l) },
		levelChange:   func() { c.onLevelChangeDue(l) },
		ratingSurvey:  func() { c.onRatingSurvey(l) },
		leadClamped:   c.onLeadClamped,
	})

	return l
}

// dispatch runs a timer callback under the controller lock.
func (c *Controller) dispatch(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn()
}

func (c *Controller) onScheduledVote(l *level) {
	if l != c.level {
		return
	}
	if err := c.launchVote(true); err != nil && !errors.Is(err, ErrNoEligibleMaps) {
		c.logger.Debug("scheduled vote not launched", "error", err)
	}
}

func (c *Controller) onVoteTimeout(l *level) {
	if l != c.level {
		return
	}
	c.finishVote()
}

func (c *Controller) onLevelChangeDue(l *level) {
	if l != c.level {
		return
	}

	if l.session.Status() == VoteInProgress {
		c.finishVote()

		// The vote may have extended the level or found nothing to choose from
		if l.scheduler.Running(timerLevelChange) || l.session.NextMap() == nil {
			return
		}
	}

	c.changeLevel(false)
}

func (c *Controller) onRatingSurvey(l *level) {
	if l != c.level {
		return
	}

	c.logger.Debug("launching rating survey")

	var menu = c.ratingMenu()
	for _, p := range c.participants.All() {
		if !ratingDenial(c.options.config, c.participants.RatingOf(p.ID)).Allowed() {
			continue
		}
		c.host.PresentSelection(p.ID, menu)
	}
}

func (c *Controller) onLeadClamped(configured, clamped time.Duration) {
	c.logger.Warn("scheduled vote lead does not fit the time budget, falling back",
		"configured", configured,
		"clamped", clamped)
	c.host.Broadcast(event(EventConfigWarning,
		"setting", "scheduled_vote_lead",
		"configured", configured.String(),
		"clamped", clamped.String()))
}

// launchVote starts a vote. The caller holds the lock.
func (c *Controller) launchVote(scheduled bool) error {
	var (
		l   = c.level
		now = c.options.clock.Now()
	)

	if l.session.Status() != VoteNotStarted {
		return ErrVoteAlreadyStarted
	}

	l.scheduler.Cancel(timerScheduledVote)
	l.scheduler.Cancel(timerVoteTimeout)
	l.scheduler.Cancel(timerRatingSurvey)
	c.host.DismissSelection(MenuRating)

	var ballot, err = l.session.Launch(l.pool, c.participants, scheduled, now)
	if errors.Is(err, ErrNoEligibleMaps) {
		c.logger.Warn("no eligible maps to vote on, add more maps or check their time restrictions",
			"pool_size", l.pool.Len())
		c.host.Broadcast(event(EventNoEligibleMaps))

		if l.session.NextMap() == nil && l.scheduler.Running(timerLevelChange) {
			c.logger.Debug("cancelling level change, no next map can be decided")
			l.scheduler.Cancel(timerLevelChange)
		}
		return err
	}
	if err != nil {
		return err
	}

	var menu = c.ballotMenu()
	for _, p := range c.participants.All() {
		c.host.PresentSelection(p.ID, menu)
	}

	l.scheduler.ArmVoteTimeout()

	c.logger.Debug("vote launched",
		"ballot_id", ballot.ID,
		"scheduled", scheduled,
		"options", len(ballot.Options))
	c.host.Broadcast(event(EventVoteStarted,
		"ballot_id", ballot.ID,
		"scheduled", strconv.FormatBool(scheduled)))

	return nil
}

// finishVote ends the running vote and applies its result. The caller holds the lock.
func (c *Controller) finishVote() {
	var (
		l   = c.level
		now = c.options.clock.Now()
	)

	if l.session.Status() != VoteInProgress {
		return
	}

	l.scheduler.Cancel(timerVoteTimeout)
	c.host.DismissSelection(MenuBallot)

	var result, err = l.session.Finish(l.pool, c.participants, now)
	if err != nil {
		c.logger.Warn("vote finished with nothing to choose from")
		c.host.Broadcast(event(EventNoChoice))

		if l.scheduler.Running(timerLevelChange) {
			c.logger.Debug("cancelling level change")
			l.scheduler.Cancel(timerLevelChange)
		}
		return
	}

	switch result.Outcome {
	case OutcomeExtend:
		c.logger.Debug("vote extended the level",
			"used_extends", l.session.UsedExtends(),
			"votes", result.Votes)

		l.scheduler.Cancel(timerLevelChange)
		l.scheduler.ScheduleLevelChange(true)
		l.scheduler.Cancel(timerScheduledVote)
		l.scheduler.ScheduleVote(true)

		c.host.Broadcast(event(EventMapExtended,
			"time", c.options.config.ExtendTime.String()))

	case OutcomeMap:
		c.logger.Debug("vote picked the next map",
			"map", result.Winner.Filename,
			"votes", result.Votes)

		c.host.Broadcast(event(EventMapWon,
			"map", l.pool.Name(result.Winner),
			"votes", strconv.Itoa(result.Votes)))
	}
}

// changeLevel switches to the next map, now or at the next round end.
func (c *Controller) changeLevel(roundEnd bool) {
	var (
		l    = c.level
		next = l.session.NextMap()
	)

	if next == nil {
		panic("mapcycle: it is time to change the level but the next map is not decided")
	}

	switch {
	case c.options.config.InstantChangeLevel:
		c.logger.Debug("changing level", "map", next.Filename)
		c.host.LoadMap(next.Filename)

	case roundEnd:
		c.logger.Debug("ending the level", "map", next.Filename)
		c.host.EndLevel()

	default:
		c.logger.Debug("waiting for the round end to change the level")
		l.session.setRoundEndPending(true)

		if c.options.config.TimeLeftLastRoundWarning {
			c.host.Broadcast(event(EventLastRound))
		}
	}
}

// checkRTV launches a vote once enough participants rocked the vote.
func (c *Controller) checkRTV() {
	var cfg = c.options.config
	if !cfg.VoteEnabled || !cfg.RTVEnabled || c.level.session.Status() != VoteNotStarted {
		return
	}

	// The level is already waiting for the round end to change
	if c.level.session.RoundEndPending() {
		return
	}

	var ratio, ok = c.participants.RTVRatio()
	if !ok || ratio < cfg.RTVNeeded {
		return
	}

	c.logger.Debug("rock the vote quorum reached", "ratio", ratio)

	// Leave the level just enough time to finish the vote
	c.level.scheduler.ScheduleLevelChangeIn(cfg.VoteDuration + graceAfterVote)

	if err := c.launchVote(false); err != nil && !errors.Is(err, ErrNoEligibleMaps) {
		c.logger.Debug("rock the vote did not launch a vote", "error", err)
	}
}

// checkVoteCompletion ends the vote early once everybody voted.
func (c *Controller) checkVoteCompletion() {
	if c.level.session.Status() != VoteInProgress {
		return
	}

	if c.participants.VoteCompletionComplete() {
		c.finishVote()
	}
}

func (c *Controller) announceVote(id string, choice *MapRecord) {
	var name = c.level.pool.Name(choice)

	switch c.options.config.VoteReaction {
	case 1:
		c.host.Broadcast(event(EventVoteCast, "participant", id))
	case 2:
		c.host.Broadcast(event(EventVoteCast, "map", name))
	case 3:
		c.host.Broadcast(event(EventVoteCast, "participant", id, "map", name))
	}
}

// refuse tells the participant why the action was denied.
func (c *Controller) refuse(id string, d Denial) Denial {
	if d.Reason == DeniedUnknownParticipant {
		return d
	}

	var params = []string{"reason", d.Reason.String()}
	if d.Map != nil {
		params = append(params, "map", c.level.pool.Name(d.Map))
	}
	if d.Wait > 0 {
		params = append(params, "seconds", strconv.Itoa(int(d.Wait.Seconds())))
	}

	c.host.Notify(id, event(EventDenied, params...))
	return d
}

func (c *Controller) timeLeft() (TimeLeftState, time.Duration) {
	if c.timeLimit == 0 {
		return TimeLeftNever, 0
	}

	if c.level.session.RoundEndPending() {
		return TimeLeftLastRound, 0
	}

	var deadline, ok = c.level.scheduler.Deadline(timerLevelChange)
	if !ok {
		return TimeLeftNever, 0
	}

	return TimeLeftRemaining, max(deadline.Sub(c.options.clock.Now()), 0)
}

func (c *Controller) ballotMenu() Menu {
	var (
		ballot  = c.level.session.Ballot()
		options = make([]MenuOption, len(ballot.Options))
	)
	for i, option := range ballot.Options {
		options[i] = MenuOption{
			Key:        option.Key,
			Label:      option.Name,
			Selectable: option.Selectable,
		}
	}

	return Menu{Kind: MenuBallot, BallotID: ballot.ID, Options: options}
}

func (c *Controller) nominationMenu() Menu {
	var (
		pool = c.level.pool
		maps = pool.Maps()
	)
	slices.SortFunc(maps, func(a, b *MapRecord) int {
		return strings.Compare(a.Key(), b.Key())
	})

	var options = make([]MenuOption, len(maps))
	for i, m := range maps {
		options[i] = MenuOption{
			Key:        m.Filename,
			Label:      pool.Name(m),
			Selectable: !pool.PlayedRecently(m),
		}
	}

	return Menu{Kind: MenuNomination, Options: options}
}

func (c *Controller) ratingMenu() Menu {
	var options = make([]MenuOption, 0, 3)
	if c.options.config.RatingAbstainOption {
		options = append(options, MenuOption{Key: strconv.Itoa(int(RatingUnset)), Label: "whatever", Selectable: true})
	}
	options = append(options,
		MenuOption{Key: strconv.Itoa(int(RatingLike)), Label: "like", Selectable: true},
		MenuOption{Key: strconv.Itoa(int(RatingDislike)), Label: "dislike", Selectable: true},
	)

	return Menu{Kind: MenuRating, Options: options}
}

// snapshotStats stamps maps seen for the first time and copies the durable
// stats of the pool into the cache. The caller holds the lock.
func (c *Controller) snapshotStats() []MapStats {
	var now = c.options.clock.Now()
	for _, m := range c.level.pool.Maps() {
		if !m.InDatabase {
			m.FirstDetected = now
			m.InDatabase = true
		}
	}

	var stats = c.level.pool.StatsSnapshot()
	for _, s := range stats {
		c.stats[s.Filename] = s
	}
	return stats
}

func (c *Controller) statsList() []MapStats {
	var list = make([]MapStats, 0, len(c.stats))
	for _, s := range c.stats {
		list = append(list, s)
	}
	return list
}

// resolveTimeLimit applies the inheritance rules: a negative limit inherits
// the host's, and a negative host limit falls back to an hour.
func (c *Controller) resolveTimeLimit() time.Duration {
	var limit = c.options.config.TimeLimit
	if limit >= 0 {
		return limit
	}

	if c.options.hostTimeLimit >= 0 {
		c.logger.Debug("inheriting the host time limit", "time_limit", c.options.hostTimeLimit)
		return c.options.hostTimeLimit
	}

	c.logger.Warn("host time limit is negative, falling back", "time_limit", fallbackTimeLimit)
	return fallbackTimeLimit
}

func formatClock(d time.Duration) string {
	var (
		seconds = int(d.Seconds())
		hours   = seconds / 3600
		minutes = seconds % 3600 / 60
	)
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
}
