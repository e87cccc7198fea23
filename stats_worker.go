package mapcycle

import (
	"context"
	"log/slog"
)

const statsQueueSize = 4

// statsWorker saves stats snapshots in the background so that level
// transitions never wait on the store.
type statsWorker struct {
	store  StatsStore
	logger *slog.Logger
	queue  chan []MapStats
	cancel context.CancelFunc
	done   chan struct{}
}

func newStatsWorker(store StatsStore, logger *slog.Logger) *statsWorker {
	return &statsWorker{
		store:  store,
		logger: logger,
		queue:  make(chan []MapStats, statsQueueSize),
	}
}

// start launches the worker. The worker runs with its own context so it is
// independent of the caller's; stop ends it.
func (w *statsWorker) start() {
	var workerCtx context.Context
	workerCtx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})

	go w.run(workerCtx)
}

// enqueue hands a snapshot to the worker without blocking. Snapshots are
// dropped while the queue is full.
func (w *statsWorker) enqueue(stats []MapStats) {
	select {
	case w.queue <- stats:
	default:
		w.logger.Warn("stats save queue is full, dropping snapshot", "maps", len(stats))
	}
}

// stop cancels the worker and waits for an in-flight save to finish.
func (w *statsWorker) stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *statsWorker) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case stats := <-w.queue:
			if err := w.store.SaveAll(context.WithoutCancel(ctx), stats); err != nil {
				w.logger.Error("failed to save map stats", "error", err)
				continue
			}
			w.logger.Debug("saved map stats", "maps", len(stats))
		}
	}
}
