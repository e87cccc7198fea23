package mapcycle

import (
	"io"
	"log/slog"
	"time"
)

// options configures the Controller behavior (internal only).
type options struct {
	config        Config
	hostTimeLimit time.Duration
	clock         Clock
	seed          uint64
	seeded        bool
	stats         StatsStore
	isLoadable    func(filename string) bool
	nameTable     map[string]string
	logger        *slog.Logger
}

// defaultOptions returns sensible defaults.
func defaultOptions() options {
	return options{
		config:        DefaultConfig(),
		hostTimeLimit: -1,
		clock:         realClock{},
		stats:         NewMemoryStatsStore(),
		isLoadable:    func(string) bool { return true },
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option is a functional option for configuring a Controller.
type Option func(*options)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithHostTimeLimit sets the time limit inherited when Config.TimeLimit is negative.
func WithHostTimeLimit(limit time.Duration) Option {
	return func(o *options) {
		o.hostTimeLimit = limit
	}
}

// WithClock sets the clock used for timers and the current time.
// DEFAULT: the wall clock
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithSeed makes candidate shuffling and tie-breaks reproducible.
// DEFAULT: a seed read from crypto/rand
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithStatsStore sets where map likes, dislikes and detection dates are kept.
// DEFAULT: an in-memory store
func WithStatsStore(store StatsStore) Option {
	return func(o *options) {
		if store != nil {
			o.stats = store
		}
	}
}

// WithMapValidator sets the predicate that decides whether the host can load a map.
// DEFAULT: every map is loadable
func WithMapValidator(isLoadable func(filename string) bool) Option {
	return func(o *options) {
		if isLoadable != nil {
			o.isLoadable = isLoadable
		}
	}
}

// WithNameTable sets the localized display names, keyed by filename.
func WithNameTable(names map[string]string) Option {
	return func(o *options) {
		o.nameTable = names
	}
}

// WithLogger sets the logger for the controller.
// If the logger is nil, the controller will use a no-op logger.
// DEFAULT: A no-op logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			return
		}

		o.logger = logger
	}
}
