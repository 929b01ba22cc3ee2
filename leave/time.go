package leave

import (
	"context"
	"time"
)

// =============================================================================
// TIME POINT - Concrete time abstraction (leave is a calendar-time domain)
// =============================================================================

type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityHour
)

// Constructors
func NewDate(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

func NewDateTime(year int, month time.Month, day, hour, minute int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, hour, minute, 0, 0, time.UTC), Granularity: GranularityHour}
}

func DateOf(t time.Time) TimePoint {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint { return DateOf(time.Now().UTC()) }

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return tp.Time.UTC()
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity}
}
func (tp TimePoint) AddMonths(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, n, 0), Granularity: tp.Granularity}
}

// Date drops sub-day precision, keeping the calendar day.
func (tp TimePoint) Date() TimePoint { return DateOf(tp.Time) }

// Min returns the earlier of tp and other; Max the later. Used for
// clipping leave ranges to reporting windows.
func (tp TimePoint) Min(other TimePoint) TimePoint {
	if other.Before(tp) {
		return other
	}
	return tp
}

func (tp TimePoint) Max(other TimePoint) TimePoint {
	if other.After(tp) {
		return other
	}
	return tp
}

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format("2006-01-02")
	default:
		return tp.Time.Format("2006-01-02 15:04")
	}
}

// SameDay reports whether both points fall on the same calendar day.
func (tp TimePoint) SameDay(other TimePoint) bool {
	ay, am, ad := tp.Time.Date()
	by, bm, bd := other.Time.Date()
	return ay == by && am == bm && ad == bd
}

func StartOfYear(year int) TimePoint { return NewDate(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewDate(year, time.December, 31) }

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a public holiday covering one or more calendar days.
// Multi-day holidays (e.g. a religious festival) are stored as a single
// row with a start/end range; half-day holidays (eve days) count as half
// a working day.
type Holiday struct {
	ID        string
	Name      string
	StartDate TimePoint
	EndDate   TimePoint
	IsHalfDay bool
	IsActive  bool
}

// Covers reports whether the holiday includes the given calendar day.
func (h Holiday) Covers(day TimePoint) bool {
	d := day.Date()
	return d.AfterOrEqual(h.StartDate.Date()) && d.BeforeOrEqual(h.EndDate.Date())
}

// HolidaySource supplies active holidays intersecting a date range.
// Holiday CRUD lives outside the engine; both stores implement this.
type HolidaySource interface {
	HolidaysInRange(ctx context.Context, from, to TimePoint) ([]Holiday, error)
}

// Calendar answers weekend and holiday questions for the duration
// calculator and the hourly-leave validation. Pure lookup, no side
// effects, safe for concurrent use.
type Calendar struct {
	source HolidaySource
}

func NewCalendar(source HolidaySource) *Calendar {
	return &Calendar{source: source}
}

// HolidaysInRange returns the active holidays intersecting [from, to].
func (c *Calendar) HolidaysInRange(ctx context.Context, from, to TimePoint) ([]Holiday, error) {
	return c.source.HolidaysInRange(ctx, from, to)
}

// HolidayOn returns the holiday covering the given day, or nil.
func (c *Calendar) HolidayOn(ctx context.Context, day TimePoint) (*Holiday, error) {
	holidays, err := c.source.HolidaysInRange(ctx, day.Date(), day.Date())
	if err != nil {
		return nil, err
	}
	for i := range holidays {
		if holidays[i].Covers(day) {
			return &holidays[i], nil
		}
	}
	return nil, nil
}

// IsNonWorking reports whether the day is a weekend or any public
// holiday (full or half). Used by the hourly-leave rules, which forbid
// hourly leave on such days entirely.
func (c *Calendar) IsNonWorking(ctx context.Context, day TimePoint) (bool, error) {
	if day.IsWeekend() {
		return true, nil
	}
	h, err := c.HolidayOn(ctx, day)
	if err != nil {
		return false, err
	}
	return h != nil, nil
}
