/*
duration.go - Working-time duration calculation

PURPOSE:
  Converts a calendar date range into payable leave hours by walking
  every day in [start, end] inclusive and charging:
    - weekends:            0 hours
    - full public holiday: 0 hours
    - half-day holiday:    0.5 x dailyWorkHours
    - regular weekday:     dailyWorkHours

DESIGN:
  Holidays for the whole range are fetched once up front, then matched
  per day in memory. Ranges in this domain span days or weeks, not
  years, so the single fetch keeps the walk allocation-free.
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// DurationCalculator computes payable working hours for a leave range.
type DurationCalculator struct {
	calendar *Calendar
}

func NewDurationCalculator(calendar *Calendar) *DurationCalculator {
	return &DurationCalculator{calendar: calendar}
}

// Calculate returns the payable hours for [start, end] inclusive at the
// given daily work hours. Returns ErrEndBeforeStart when the range is
// inverted. A range of all weekends/holidays yields zero, which the
// request lifecycle rejects separately.
func (dc *DurationCalculator) Calculate(ctx context.Context, start, end TimePoint, dailyWorkHours decimal.Decimal) (decimal.Decimal, error) {
	from, to := start.Date(), end.Date()
	if to.Before(from) {
		return decimal.Zero, ErrEndBeforeStart
	}
	if !dailyWorkHours.IsPositive() {
		return decimal.Zero, nil
	}

	holidays, err := dc.calendar.HolidaysInRange(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	halfDay := dailyWorkHours.Mul(half)
	total := decimal.Zero
	for day := from; day.BeforeOrEqual(to); day = day.AddDays(1) {
		if day.IsWeekend() {
			continue
		}
		switch kind := holidayKind(holidays, day); kind {
		case holidayFull:
			// zero hours
		case holidayHalf:
			total = total.Add(halfDay)
		default:
			total = total.Add(dailyWorkHours)
		}
	}
	return total, nil
}

type dayKind int

const (
	workingDay dayKind = iota
	holidayFull
	holidayHalf
)

// holidayKind classifies a day against the fetched holidays. A full-day
// holiday wins over a half-day holiday covering the same date.
func holidayKind(holidays []Holiday, day TimePoint) dayKind {
	kind := workingDay
	for _, h := range holidays {
		if !h.Covers(day) {
			continue
		}
		if !h.IsHalfDay {
			return holidayFull
		}
		kind = holidayHalf
	}
	return kind
}
