package mapcycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStatsStore struct {
	calls atomic.Int32
}

func (s *failingStatsStore) LoadAll(_ context.Context) ([]MapStats, error) {
	return nil, errors.New("store unavailable")
}

func (s *failingStatsStore) SaveAll(_ context.Context, _ []MapStats) error {
	s.calls.Add(1)
	return errors.New("store unavailable")
}

func TestStatsWorker(t *testing.T) {
	var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("should save queued snapshots in the background", func(t *testing.T) {
		// Arrange
		var (
			store = NewMemoryStatsStore()
			sut   = newStatsWorker(store, logger)
		)
		sut.start()

		// Act
		sut.enqueue([]MapStats{{Filename: "de_dust2", Detected: testTime, Likes: 1}})

		// Assert
		require.Eventually(t, func() bool {
			var stats, _ = store.LoadAll(context.Background())
			return len(stats) == 1
		}, time.Second, 10*time.Millisecond)
		assert.NoError(t, sut.stop(context.Background()))
	})

	t.Run("should keep running after a failed save", func(t *testing.T) {
		// Arrange
		var (
			store = &failingStatsStore{}
			sut   = newStatsWorker(store, logger)
		)
		sut.start()

		// Act
		sut.enqueue([]MapStats{{Filename: "de_dust2"}})
		sut.enqueue([]MapStats{{Filename: "de_nuke"}})

		// Assert
		require.Eventually(t, func() bool {
			return store.calls.Load() == 2
		}, time.Second, 10*time.Millisecond)
		assert.NoError(t, sut.stop(context.Background()))
	})

	t.Run("should stop without having started", func(t *testing.T) {
		assert.NoError(t, newStatsWorker(NewMemoryStatsStore(), logger).stop(context.Background()))
	})

	t.Run("should fail to start the controller when stats cannot be loaded", func(t *testing.T) {
		// Arrange
		var sut, err = NewController(newRecordingHost(), StaticPool(),
			WithConfig(testConfig()),
			WithStatsStore(&failingStatsStore{}))
		require.NoError(t, err)

		// Act
		var startErr = sut.Start(context.Background())

		// Assert
		assert.ErrorContains(t, startErr, "failed to load map stats")
	})
}
