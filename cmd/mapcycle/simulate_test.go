package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mapcycle "go-mapcycle"
)

func TestSimulation_Shutdown(t *testing.T) {
	t.Run("should save the ratings of the current level", func(t *testing.T) {
		// Arrange
		var (
			ctx   = context.Background()
			store = mapcycle.NewMemoryStatsStore()
			host  = newConsoleHost()
		)
		controller, err := mapcycle.NewController(host, mapcycle.StaticPool("de_dust2", "de_nuke"),
			mapcycle.WithConfig(mapcycle.DefaultConfig()),
			mapcycle.WithStatsStore(store))
		require.NoError(t, err)
		require.NoError(t, controller.Start(ctx))

		var sut = &simulation{ctx: ctx, controller: controller, host: host}
		require.NoError(t, sut.loadLevel("de_dust2"))
		sut.join()
		sut.join()
		sut.rateAll(mapcycle.RatingLike)

		// Act
		var shutdownErr = sut.shutdown()

		// Assert
		require.NoError(t, shutdownErr)
		stats, err := store.LoadAll(ctx)
		require.NoError(t, err)
		var likes = make(map[string]int)
		for _, s := range stats {
			likes[s.Filename] = s.Likes
		}
		assert.Equal(t, 2, likes["de_dust2"])
		assert.Zero(t, likes["de_nuke"])
	})
}
