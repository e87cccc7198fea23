package mapcycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firing struct {
	kind timerKind
	at   time.Time
}

func TestScheduler(t *testing.T) {
	var (
		immediate = func(fn func()) { fn() }
		newSUT    = func(cfg Config, timeLimit time.Duration, dispatch func(fn func())) (*Scheduler, *manualClock, *[]firing) {
			var (
				clock = newManualClock(testTime)
				fired = &[]firing{}
				hook  = func(kind timerKind) func() {
					return func() { *fired = append(*fired, firing{kind: kind, at: clock.Now()}) }
				}
			)
			var sut = newScheduler(clock, cfg, timeLimit, dispatch, schedulerHooks{
				scheduledVote: hook(timerScheduledVote),
				voteTimeout:   hook(timerVoteTimeout),
				levelChange:   hook(timerLevelChange),
				ratingSurvey:  hook(timerRatingSurvey),
			})
			return sut, clock, fired
		}
	)

	t.Run("should fire the scheduled vote so that it ends ahead of the time limit", func(t *testing.T) {
		// Arrange
		var sut, clock, fired = newSUT(testConfig(), 30*time.Minute, immediate)

		// Act
		require.True(t, sut.ScheduleVote(false))
		require.True(t, sut.ScheduleLevelChange(false))
		clock.Advance(31 * time.Minute)

		// Assert
		assert.Equal(t, []firing{
			{kind: timerRatingSurvey, at: testTime.Add(1460 * time.Second)},
			{kind: timerScheduledVote, at: testTime.Add(1470 * time.Second)},
			{kind: timerLevelChange, at: testTime.Add(30*time.Minute + 5*time.Second)},
		}, *fired)
		assert.False(t, sut.Running(timerLevelChange))
	})

	t.Run("should skip the rating survey when ratings are disabled", func(t *testing.T) {
		// Arrange
		var cfg = testConfig()
		cfg.RatingEnabled = false
		var sut, clock, fired = newSUT(cfg, 30*time.Minute, immediate)

		// Act
		sut.ScheduleVote(false)
		clock.Advance(30 * time.Minute)

		// Assert
		require.Len(t, *fired, 1)
		assert.Equal(t, timerScheduledVote, (*fired)[0].kind)
	})

	t.Run("should clamp a lead that does not fit the time limit", func(t *testing.T) {
		// Arrange
		var (
			sut, clock, _ = newSUT(testConfig(), 4*time.Minute, immediate)
			configured    time.Duration
			clamped       time.Duration
			expected      = time.Duration(float64(4*time.Minute) * leadFallbackFraction)
		)
		sut.hooks.leadClamped = func(c, l time.Duration) {
			configured, clamped = c, l
		}

		// Act
		sut.ScheduleVote(false)

		// Assert
		assert.Equal(t, 5*time.Minute, configured)
		assert.Equal(t, expected, clamped)
		var deadline, ok = sut.Deadline(timerScheduledVote)
		require.True(t, ok)
		assert.Equal(t, clock.Now().Add(4*time.Minute-expected-30*time.Second), deadline)
	})

	t.Run("should never arm with a negative delay", func(t *testing.T) {
		// Arrange
		var cfg = testConfig()
		cfg.ScheduledVoteLead = 50 * time.Second
		var sut, clock, _ = newSUT(cfg, time.Minute, immediate)

		// Act
		sut.ScheduleVote(false)

		// Assert
		var deadline, _ = sut.Deadline(timerScheduledVote)
		assert.Equal(t, clock.Now(), deadline)
	})

	t.Run("should arm nothing when the time limit is zero", func(t *testing.T) {
		// Arrange
		var sut, clock, _ = newSUT(testConfig(), 0, immediate)

		// Act
		var voteArmed = sut.ScheduleVote(false)
		var changeArmed = sut.ScheduleLevelChange(false)

		// Assert
		assert.False(t, voteArmed)
		assert.False(t, changeArmed)
		assert.Zero(t, clock.Pending())
	})

	t.Run("should use the extend time after an extension", func(t *testing.T) {
		// Arrange
		var sut, clock, _ = newSUT(testConfig(), 30*time.Minute, immediate)

		// Act
		sut.ScheduleLevelChange(true)

		// Assert
		var deadline, _ = sut.Deadline(timerLevelChange)
		assert.Equal(t, clock.Now().Add(15*time.Minute+5*time.Second), deadline)
	})

	t.Run("should let a re-arm supersede the previous timer", func(t *testing.T) {
		// Arrange
		var sut, clock, fired = newSUT(testConfig(), 30*time.Minute, immediate)
		sut.ScheduleLevelChange(false)

		// Act
		sut.ScheduleLevelChangeIn(35 * time.Second)
		clock.Advance(time.Hour)

		// Assert
		require.Len(t, *fired, 1)
		assert.Equal(t, testTime.Add(35*time.Second), (*fired)[0].at)
	})

	t.Run("should ignore repeated cancels", func(t *testing.T) {
		// Arrange
		var sut, clock, fired = newSUT(testConfig(), 30*time.Minute, immediate)
		sut.ArmVoteTimeout()

		// Act
		sut.Cancel(timerVoteTimeout)
		sut.Cancel(timerVoteTimeout)
		sut.Cancel(timerLevelChange)
		clock.Advance(time.Minute)

		// Assert
		assert.Empty(t, *fired)
		assert.False(t, sut.Running(timerVoteTimeout))
		var _, ok = sut.Deadline(timerVoteTimeout)
		assert.False(t, ok)
	})

	t.Run("should drop a firing that was cancelled while queued", func(t *testing.T) {
		// Arrange
		var (
			queue    []func()
			deferred = func(fn func()) { queue = append(queue, fn) }
		)
		var sut, clock, fired = newSUT(testConfig(), 30*time.Minute, deferred)
		sut.ArmVoteTimeout()
		clock.Advance(time.Minute)
		require.Len(t, queue, 1)

		// Act
		sut.Cancel(timerVoteTimeout)
		queue[0]()

		// Assert
		assert.Empty(t, *fired)
	})

	t.Run("should drop a firing that was superseded while queued", func(t *testing.T) {
		// Arrange
		var (
			queue    []func()
			deferred = func(fn func()) { queue = append(queue, fn) }
		)
		var sut, clock, fired = newSUT(testConfig(), 30*time.Minute, deferred)
		sut.ArmVoteTimeout()
		clock.Advance(time.Minute)

		// Act
		sut.ArmVoteTimeout()
		queue[0]()

		// Assert
		assert.Empty(t, *fired)
		assert.True(t, sut.Running(timerVoteTimeout))
	})

	t.Run("should cancel every timer", func(t *testing.T) {
		// Arrange
		var sut, clock, fired = newSUT(testConfig(), 30*time.Minute, immediate)
		sut.ScheduleVote(false)
		sut.ScheduleLevelChange(false)
		sut.ArmVoteTimeout()

		// Act
		sut.CancelAll()
		clock.Advance(time.Hour)

		// Assert
		assert.Empty(t, *fired)
		for kind := range timerKindCount {
			assert.False(t, sut.Running(kind), kind.String())
		}
	})
}
