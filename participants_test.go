package mapcycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantRegistry(t *testing.T) {
	var (
		newRegistry = func(ids ...string) *ParticipantRegistry {
			var registry = NewParticipantRegistry()
			for _, id := range ids {
				registry.Join(id)
			}
			return registry
		}
		dust = &MapRecord{Filename: "de_dust2"}
		nuke = &MapRecord{Filename: "de_nuke"}
	)

	t.Run("should keep the existing participant on a second join", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1")
		sut.RecordVote("p1", dust, nil)

		// Act
		var p = sut.Join("p1")

		// Assert
		assert.Equal(t, 1, sut.Len())
		assert.Same(t, dust, p.VotedMap)
	})

	t.Run("should list participants in join order", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p3", "p1", "p2")
		sut.Leave("p1")

		// Act
		var all = sut.All()

		// Assert
		require.Len(t, all, 2)
		assert.Equal(t, "p3", all[0].ID)
		assert.Equal(t, "p2", all[1].ID)
	})

	t.Run("should report unknown participants on leave", func(t *testing.T) {
		assert.False(t, newRegistry().Leave("ghost"))
	})

	t.Run("should not mutate when the gate denies", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1")

		// Act
		var denial = sut.RecordVote("p1", dust, func(*Participant) Denial {
			return deny(DeniedNotInProgress)
		})

		// Assert
		assert.Equal(t, DeniedNotInProgress, denial.Reason)
		var p, _ = sut.Get("p1")
		assert.Nil(t, p.VotedMap)
	})

	t.Run("should deny actions from unknown participants", func(t *testing.T) {
		// Arrange
		var sut = newRegistry()

		// Act
		var denial = sut.RecordRTV("ghost", nil)

		// Assert
		assert.Equal(t, DeniedUnknownParticipant, denial.Reason)
	})

	t.Run("should compute the RTV ratio", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1", "p2", "p3", "p4", "p5")
		for _, id := range []string{"p1", "p2", "p3"} {
			sut.RecordRTV(id, nil)
		}

		// Act
		var ratio, ok = sut.RTVRatio()

		// Assert
		require.True(t, ok)
		assert.Equal(t, 0.6, ratio)
	})

	t.Run("should report no quorum without participants", func(t *testing.T) {
		// Act
		var _, ok = newRegistry().RTVRatio()

		// Assert
		assert.False(t, ok)
	})

	t.Run("should complete the vote only once everybody voted", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1", "p2")
		sut.RecordVote("p1", dust, nil)

		// Act
		var partial = sut.VoteCompletionComplete()
		sut.RecordVote("p2", nuke, nil)
		var complete = sut.VoteCompletionComplete()

		// Assert
		assert.False(t, partial)
		assert.True(t, complete)
	})

	t.Run("should not consider an empty vote complete", func(t *testing.T) {
		assert.False(t, newRegistry().VoteCompletionComplete())
	})

	t.Run("should list one entry per vote and nomination", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1", "p2", "p3")
		sut.RecordVote("p1", dust, nil)
		sut.RecordVote("p3", dust, nil)
		sut.RecordNomination("p2", nuke, nil)

		// Act
		var voted = sut.VotedMaps()
		var nominated = sut.NominatedMaps()

		// Assert
		assert.Equal(t, []*MapRecord{dust, dust}, voted)
		assert.Equal(t, []*MapRecord{nuke}, nominated)
	})

	t.Run("should reset only the selected fields", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1")
		sut.RecordVote("p1", dust, nil)
		sut.RecordNomination("p1", nuke, nil)
		sut.RecordRTV("p1", nil)

		// Act
		sut.ResetForNewRound(ResetVote | ResetRTV)

		// Assert
		var p, _ = sut.Get("p1")
		assert.Nil(t, p.VotedMap)
		assert.Same(t, nuke, p.NominatedMap)
		assert.False(t, p.UsedRTV)
	})

	t.Run("should keep ratings across reconnects until the level ends", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1", "p2")
		sut.RecordRating("p1", RatingLike, nil)
		sut.RecordRating("p2", RatingDislike, nil)

		// Act
		sut.Leave("p1")
		sut.Join("p1")
		var kept = sut.RatingOf("p1")
		sut.ResetForNewLevel()

		// Assert
		assert.Equal(t, RatingLike, kept)
		assert.Equal(t, RatingUnset, sut.RatingOf("p1"))
		assert.Equal(t, RatingUnset, sut.RatingOf("p2"))
	})

	t.Run("should count and clear ratings", func(t *testing.T) {
		// Arrange
		var sut = newRegistry("p1", "p2", "p3")
		sut.RecordRating("p1", RatingLike, nil)
		sut.RecordRating("p2", RatingLike, nil)
		sut.RecordRating("p3", RatingDislike, nil)

		// Act
		var likes, dislikes = sut.TakeRatings()
		var againLikes, againDislikes = sut.TakeRatings()

		// Assert
		assert.Equal(t, 2, likes)
		assert.Equal(t, 1, dislikes)
		assert.Zero(t, againLikes)
		assert.Zero(t, againDislikes)
	})
}
