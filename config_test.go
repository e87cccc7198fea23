package mapcycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("should default every tunable", func(t *testing.T) {
		// Act
		var cfg = DefaultConfig()

		// Assert
		assert.Equal(t, -time.Minute, cfg.TimeLimit)
		assert.Equal(t, 2, cfg.MaxExtends)
		assert.Equal(t, 15*time.Minute, cfg.ExtendTime)
		assert.Equal(t, 2, cfg.RecentMapsLimit)
		assert.Equal(t, 5, cfg.MaxOptions)
		assert.Equal(t, 30*time.Second, cfg.VoteDuration)
		assert.Equal(t, 5*time.Minute, cfg.ScheduledVoteLead)
		assert.Equal(t, 0.6, cfg.RTVNeeded)
		assert.Equal(t, 30*time.Second, cfg.RTVDelay)
		assert.Equal(t, RatingRatio, cfg.RatingMethod)
		assert.True(t, cfg.AbstainOption)
		assert.False(t, cfg.InstantChangeLevel)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("should read the environment", func(t *testing.T) {
		// Arrange
		t.Setenv("MC_TIMELIMIT", "20m")
		t.Setenv("MC_RTV_NEEDED", "0.5")
		t.Setenv("MC_INSTANT_CHANGE_LEVEL", "true")
		t.Setenv("MC_LIKEMAP_METHOD", "1")

		// Act
		var cfg, err = LoadConfig()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 20*time.Minute, cfg.TimeLimit)
		assert.Equal(t, 0.5, cfg.RTVNeeded)
		assert.True(t, cfg.InstantChangeLevel)
		assert.Equal(t, RatingLikes, cfg.RatingMethod)
	})

	t.Run("should reject an unparsable value", func(t *testing.T) {
		// Arrange
		t.Setenv("MC_VOTE_DURATION", "soon")

		// Act
		var _, err = LoadConfig()

		// Assert
		assert.Error(t, err)
	})

	t.Run("should reject out of range values", func(t *testing.T) {
		// Arrange
		t.Setenv("MC_RTV_NEEDED", "1.5")

		// Act
		var _, err = LoadConfig()

		// Assert
		assert.ErrorContains(t, err, "rtv needed")
	})

	t.Run("should report every invalid field", func(t *testing.T) {
		// Arrange
		var cfg = DefaultConfig()
		cfg.RatingMethod = 7
		cfg.MaxExtends = -1
		cfg.VoteDuration = 0
		cfg.VoteReaction = 4

		// Act
		var err = cfg.Validate()

		// Assert
		require.Error(t, err)
		assert.ErrorContains(t, err, "likemap method")
		assert.ErrorContains(t, err, "max extends")
		assert.ErrorContains(t, err, "vote duration")
		assert.ErrorContains(t, err, "chat reaction")
	})
}
