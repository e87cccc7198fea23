package mapcycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// TimeRestriction limits a map to a minute-of-day interval [Start, End).
// An interval with Start >= End wraps past midnight.
type TimeRestriction struct {
	Start int
	End   int
}

// ParseTimeRestriction parses the pool file syntax "HH:MM,HH:MM".
func ParseTimeRestriction(value string) (*TimeRestriction, error) {
	var parts = strings.Split(value, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeRestriction, value)
	}

	start, err := parseMinuteOfDay(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRestriction, value, err)
	}

	end, err := parseMinuteOfDay(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRestriction, value, err)
	}

	return &TimeRestriction{Start: start, End: end}, nil
}

func parseMinuteOfDay(value string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("expected HH:MM")
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bad hour %q", hh)
	}

	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute %q", mm)
	}

	return hour*60 + minute, nil
}

// Contains reports whether the minute-of-day falls inside the interval.
func (r TimeRestriction) Contains(minute int) bool {
	if r.Start < r.End {
		return r.Start <= minute && minute < r.End
	}
	return minute >= r.Start || minute < r.End
}

// String formats the interval back into pool file syntax.
func (r TimeRestriction) String() string {
	return fmt.Sprintf("%02d:%02d,%02d:%02d", r.Start/60, r.Start%60, r.End/60, r.End%60)
}

func minuteOfDay(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) % minutesPerDay
}
