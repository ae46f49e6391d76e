package season

import "time"

// Calendar derives the current season from an injected clock. Every
// component that needs season arithmetic takes a Calendar; nothing else
// in the codebase calls time.Now for season math, so tests can simulate
// rollover deterministically.
type Calendar struct {
	// First is the earliest season mirrored in the historical store.
	First int

	// Rollover is the month a new season's year becomes current. Before
	// it, the prior year's season is still the current one. January means
	// the season simply tracks the calendar year.
	Rollover time.Month

	// Now supplies wall-clock time. Nil means time.Now.
	Now func() time.Time
}

// New returns a Calendar backed by the system clock.
func New(first int, rollover time.Month) Calendar {
	return Calendar{First: first, Rollover: rollover, Now: time.Now}
}

// Current returns the season in progress. All seasons strictly before it
// are closed and immutable upstream.
func (c Calendar) Current() int {
	now := c.now()
	year := now.Year()
	if c.Rollover > time.January && now.Month() < c.Rollover {
		year--
	}
	return year
}

// Closed reports whether s is a mirrored, immutable season: within
// [First, Current-1]. Current and future seasons are never closed, no
// matter what the historical store contains.
func (c Calendar) Closed(s int) bool {
	return s >= c.First && s < c.Current()
}

// Expected returns every closed season, in ascending order. This is the
// coverage target for gap detection.
func (c Calendar) Expected() []int {
	current := c.Current()
	if current <= c.First {
		return nil
	}
	seasons := make([]int, 0, current-c.First)
	for s := c.First; s < current; s++ {
		seasons = append(seasons, s)
	}
	return seasons
}

func (c Calendar) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
