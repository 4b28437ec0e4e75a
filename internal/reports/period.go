package reports

import "time"

// lastWeekOfYear is the period the weekly previous-period arithmetic rolls
// back to when underflowing into the prior year. It is an approximation: the
// anchoring below can produce a 53rd partial week, but historical cache keys
// were written against week 52 so the rollover stays fixed.
const lastWeekOfYear = 52

// WeekRange maps a week index to its window. Week 1 starts on the first
// Sunday on or after Jan 1 of the year; every week spans 7 days ending at the
// last instant of its sixth day after start.
//
// This is deliberately not ISO-8601 week numbering. Cached bundles are keyed
// by this exact anchoring, so it must not be replaced with a standard
// week-number routine.
func WeekRange(week, year int) (Window, error) {
	if week < 1 || week > 53 {
		return Window{}, ErrInvalidPeriod
	}
	firstDay := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (7 - int(firstDay.Weekday())) % 7
	start := firstDay.AddDate(0, 0, offset+(week-1)*7)
	end := endOfDay(start.AddDate(0, 0, 6))
	return Window{Start: start, End: end}, nil
}

// MonthRange maps a calendar month to its window, first day through the last
// instant of the last day.
func MonthRange(month, year int) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, ErrInvalidPeriod
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := endOfDay(start.AddDate(0, 1, -1))
	return Window{Start: start, End: end}, nil
}

// Resolver performs the period boundary arithmetic for both report kinds.
type Resolver struct {
	now func() time.Time
}

// NewResolver builds a resolver on the wall clock.
func NewResolver() *Resolver {
	return &Resolver{now: func() time.Time { return time.Now().UTC() }}
}

// Range resolves (kind, period, year) to its window.
func (r *Resolver) Range(kind Kind, period, year int) (Window, error) {
	switch kind {
	case KindWeekly:
		return WeekRange(period, year)
	case KindMonthly:
		return MonthRange(period, year)
	default:
		return Window{}, ErrUnknownKind
	}
}

// IsCurrent reports whether the period is the one containing now. Only the
// current year qualifies; past and future years are both non-current, so a
// future period simply misses the cache and computes live over an empty or
// partial window.
func (r *Resolver) IsCurrent(kind Kind, period, year int) bool {
	now := r.now()
	if year != now.Year() {
		return false
	}
	switch kind {
	case KindWeekly:
		return period == weekOf(now)
	case KindMonthly:
		return period == int(now.Month())
	default:
		return false
	}
}

// Current returns the period containing now.
func (r *Resolver) Current(kind Kind) (int, int) {
	now := r.now()
	if kind == KindWeekly {
		return weekOf(now), now.Year()
	}
	return int(now.Month()), now.Year()
}

// Previous returns the immediately preceding (period, year). Weekly underflow
// rolls to the approximate week 52 of the prior year, not the true last
// calendar week.
func (r *Resolver) Previous(kind Kind, period, year int) (int, int) {
	if period > 1 {
		return period - 1, year
	}
	if kind == KindWeekly {
		return lastWeekOfYear, year - 1
	}
	return 12, year - 1
}

// weekOf computes the week number of t under the same anchoring as WeekRange.
// Days before the first anchored Sunday count as week 1.
func weekOf(t time.Time) int {
	firstDay := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (7 - int(firstDay.Weekday())) % 7
	week1 := firstDay.AddDate(0, 0, offset)
	if t.Before(week1) {
		return 1
	}
	return int(t.Sub(week1).Hours()/(24*7)) + 1
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
