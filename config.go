package mapcycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// graceAfterVote keeps the level alive a little after a vote ends.
	graceAfterVote = 5 * time.Second

	// leadFallbackFraction replaces a scheduled-vote lead that does not fit the time budget.
	leadFallbackFraction = 0.33

	// fallbackTimeLimit is used when neither we nor the host have a usable time limit.
	fallbackTimeLimit = 60 * time.Minute
)

// Config holds the tunables of the rotation. Every field can be set from the
// environment with the MC_ prefix.
type Config struct {
	// TimeLimit is how long a level lasts. Zero disables scheduled votes and
	// level changes, a negative value inherits the host's time limit.
	TimeLimit          time.Duration `env:"MC_TIMELIMIT" envDefault:"-1m"`
	InstantChangeLevel bool          `env:"MC_INSTANT_CHANGE_LEVEL" envDefault:"false"`
	MaxExtends         int           `env:"MC_MAX_EXTENDS" envDefault:"2"`
	ExtendTime         time.Duration `env:"MC_EXTEND_TIME" envDefault:"15m"`
	RecentMapsLimit    int           `env:"MC_RECENT_MAPS_LIMIT" envDefault:"2"`
	NewMapTimeoutDays  int           `env:"MC_NEW_MAP_TIMEOUT_DAYS" envDefault:"5"`

	UseFullName            bool `env:"MC_USE_FULLNAME" envDefault:"true"`
	PredictMissingFullName bool `env:"MC_PREDICT_MISSING_FULLNAME" envDefault:"true"`
	FullNameSkipsPrefix    bool `env:"MC_FULLNAME_SKIPS_PREFIX" envDefault:"true"`

	AlphabeticSort           bool `env:"MC_ALPHABETIC_SORT_ENABLED" envDefault:"false"`
	AlphabeticSortByFullName bool `env:"MC_ALPHABETIC_SORT_BY_FULLNAME" envDefault:"false"`

	VoteEnabled       bool          `env:"MC_VOTEMAP_ENABLE" envDefault:"true"`
	MaxOptions        int           `env:"MC_VOTEMAP_MAX_OPTIONS" envDefault:"5"`
	VoteDuration      time.Duration `env:"MC_VOTE_DURATION" envDefault:"30s"`
	ScheduledVoteLead time.Duration `env:"MC_SCHEDULED_VOTE_TIME" envDefault:"5m"`
	VoteReaction      int           `env:"MC_VOTEMAP_CHAT_REACTION" envDefault:"3"`
	AllowRevote       bool          `env:"MC_VOTEMAP_ALLOW_REVOTE" envDefault:"true"`
	AbstainOption     bool          `env:"MC_VOTEMAP_WHATEVER_OPTION" envDefault:"true"`

	NominateEnabled     bool `env:"MC_NOMINATE_ENABLE" envDefault:"true"`
	NominateAllowRevote bool `env:"MC_NOMINATE_ALLOW_REVOTE" envDefault:"true"`

	RTVEnabled bool          `env:"MC_RTV_ENABLE" envDefault:"true"`
	RTVNeeded  float64       `env:"MC_RTV_NEEDED" envDefault:"0.6"`
	RTVDelay   time.Duration `env:"MC_RTV_DELAY" envDefault:"30s"`

	NextMapEnabled           bool `env:"MC_NEXTMAP_ENABLE" envDefault:"true"`
	NextMapShowOnMatchEnd    bool `env:"MC_NEXTMAP_SHOW_ON_MATCH_END" envDefault:"true"`
	TimeLeftEnabled          bool `env:"MC_TIMELEFT_ENABLE" envDefault:"true"`
	TimeLeftLastRoundWarning bool `env:"MC_TIMELEFT_AUTO_LASTROUND_WARNING" envDefault:"true"`

	RatingEnabled        bool          `env:"MC_LIKEMAP_ENABLE" envDefault:"true"`
	RatingMethod         RatingMethod  `env:"MC_LIKEMAP_METHOD" envDefault:"3"`
	RatingAbstainOption  bool          `env:"MC_LIKEMAP_WHATEVER_OPTION" envDefault:"true"`
	RatingSurveyDuration time.Duration `env:"MC_LIKEMAP_SURVEY_DURATION" envDefault:"10s"`
}

// DefaultConfig returns the configuration with every field at its default.
func DefaultConfig() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("mapcycle: invalid config defaults: %v", err))
	}
	return cfg
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the rotation cannot work with.
func (c Config) Validate() error {
	var errs []error

	if c.RatingMethod < RatingLikes || c.RatingMethod > RatingRatio {
		errs = append(errs, fmt.Errorf("likemap method must be 1, 2 or 3, got %d", c.RatingMethod))
	}
	if c.RTVNeeded <= 0 || c.RTVNeeded > 1 {
		errs = append(errs, fmt.Errorf("rtv needed must be in (0, 1], got %v", c.RTVNeeded))
	}
	if c.MaxOptions < 0 {
		errs = append(errs, fmt.Errorf("votemap max options must not be negative, got %d", c.MaxOptions))
	}
	if c.MaxExtends < 0 {
		errs = append(errs, fmt.Errorf("max extends must not be negative, got %d", c.MaxExtends))
	}
	if c.VoteDuration <= 0 {
		errs = append(errs, fmt.Errorf("vote duration must be positive, got %s", c.VoteDuration))
	}
	if c.VoteReaction < 0 || c.VoteReaction > 3 {
		errs = append(errs, fmt.Errorf("votemap chat reaction must be 0..3, got %d", c.VoteReaction))
	}

	return errors.Join(errs...)
}
