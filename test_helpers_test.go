package mapcycle

import (
	"slices"
	"sync"
	"time"
)

// manualClock is a Clock whose time only moves when Advance is called.
// Timers fire synchronously from Advance, in deadline order.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	var t = &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing every timer that comes due. The
// clock lock is released while a callback runs so it can arm new timers.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	var target = c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next = c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pending int
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			pending++
		}
	}
	return pending
}

func (c *manualClock) nextDue(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// recordingHost remembers everything the controller asked it to do.
type recordingHost struct {
	mu         sync.Mutex
	broadcasts []Event
	notices    map[string][]Event
	menus      map[string]Menu
	dismissed  []MenuKind
	loaded     []string
	endLevels  int
}

func newRecordingHost() *recordingHost {
	return &recordingHost{
		notices: make(map[string][]Event),
		menus:   make(map[string]Menu),
	}
}

func (h *recordingHost) PresentSelection(participantID string, menu Menu) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.menus[participantID] = menu
}

func (h *recordingHost) DismissSelection(kind MenuKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dismissed = append(h.dismissed, kind)
}

func (h *recordingHost) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, event)
}

func (h *recordingHost) Notify(participantID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notices[participantID] = append(h.notices[participantID], event)
}

func (h *recordingHost) LoadMap(filename string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = append(h.loaded, filename)
}

func (h *recordingHost) EndLevel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.endLevels++
}

func (h *recordingHost) broadcastKinds() []EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()

	var kinds = make([]EventKind, len(h.broadcasts))
	for i, e := range h.broadcasts {
		kinds[i] = e.Kind
	}
	return kinds
}

func (h *recordingHost) lastBroadcast(kind EventKind) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range slices.Backward(h.broadcasts) {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}

func (h *recordingHost) lastNotice(participantID string) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var notices = h.notices[participantID]
	if len(notices) == 0 {
		return Event{}, false
	}
	return notices[len(notices)-1], true
}

func (h *recordingHost) menu(participantID string) (Menu, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var menu, ok = h.menus[participantID]
	return menu, ok
}

// testTime is a fixed noon so that time restrictions are predictable.
var testTime = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

// testConfig returns defaults with a fixed half-hour level.
func testConfig() Config {
	var cfg = DefaultConfig()
	cfg.TimeLimit = 30 * time.Minute
	cfg.ScheduledVoteLead = 5 * time.Minute
	cfg.VoteDuration = 30 * time.Second
	return cfg
}

func newTestPool(filenames ...string) *MapPool {
	var pool = NewMapPool(newNameResolver(DefaultConfig(), nil))
	pool.Load(StaticPool(filenames...), nil)
	return pool
}
