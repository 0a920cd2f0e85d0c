// Package calendar implements the date arithmetic deadline statutes are
// written in: calendar-day counts, business-day counts, and month-plus-day
// formulas with month-end clamping.  All operations are pure and
// deterministic; the only collaborator is an injected holiday calendar.
package calendar

import (
	"fmt"
	"time"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// ─────────────────────────────────────────────────────────────────────────────
// Holiday calendar contract
// ─────────────────────────────────────────────────────────────────────────────

// Calendar answers whether a civil date is a holiday.  Implementations live in
// infrastructure (computed federal calendar, file-backed lists); the
// arithmetic never hard-codes holiday knowledge so the engine stays correct
// across jurisdictions with different holiday calendars.
type Calendar interface {
	// IsHoliday reports whether d is a holiday.  Implementations return a
	// non-nil error when they cannot answer for d, e.g. when d falls outside
	// the data range they were loaded with.
	IsHoliday(d common.Date) (bool, error)
}

type noHolidays struct{}

func (noHolidays) IsHoliday(common.Date) (bool, error) { return false, nil }

// NoHolidays returns a Calendar with an empty holiday set, so business-day
// arithmetic skips weekends only.  Intended for tests and for jurisdictions
// whose statutes count weekends as the only non-business days.
func NoHolidays() Calendar { return noHolidays{} }

// Provider hands out the holiday calendar for a jurisdiction. A provider
// may serve one shared calendar for every code (the federal calendar) or
// per-jurisdiction sets.
type Provider interface {
	CalendarFor(code deadline.JurisdictionCode) (Calendar, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(code deadline.JurisdictionCode) (Calendar, error)

// CalendarFor calls f.
func (f ProviderFunc) CalendarFor(code deadline.JurisdictionCode) (Calendar, error) {
	return f(code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Arithmetic
// ─────────────────────────────────────────────────────────────────────────────

// AddCalendarDays returns the date n calendar days after d.  n may be any
// integer; negative values count backwards.
func AddCalendarDays(d common.Date, n int) common.Date {
	return d.AddDays(n)
}

// AddBusinessDays advances d by n days that are not Saturday, not Sunday, and
// not holidays per cal.  n of zero returns d unchanged, whatever weekday d
// falls on.  Negative n fails with InvalidArgument: statutes never count
// business days backwards, and the holiday calendar's epoch gives backward
// counting no defined semantics.
func AddBusinessDays(d common.Date, n int, cal Calendar) (common.Date, error) {
	if n < 0 {
		return common.Date{}, errors.InvalidArgument(
			fmt.Sprintf("business-day count must not be negative, got %d", n))
	}
	if cal == nil {
		return common.Date{}, errors.InvalidArgument("holiday calendar is required")
	}

	cur := d
	for remaining := n; remaining > 0; {
		cur = cur.AddDays(1)
		if wd := cur.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		holiday, err := cal.IsHoliday(cur)
		if err != nil {
			return common.Date{}, errors.Wrap(err, errors.ErrCodeCalendarUnavailable,
				fmt.Sprintf("holiday lookup failed for %s", cur))
		}
		if holiday {
			continue
		}
		remaining--
	}
	return cur, nil
}

// AddMonthsClamped advances the month component of d by months, then sets the
// day of month to min(targetDay, days in the resulting month).  The statutory
// formula "the 15th day of the 3rd month after" maps directly: the day
// component of d never matters, only its month.  Clamping keeps the result a
// real date (a targetDay of 31 landing in February yields Feb 28/29); the
// operation is total and never fails.
func AddMonthsClamped(d common.Date, months, targetDay int) common.Date {
	year := d.Year
	month := int(d.Month) - 1 + months // zero-based for modular arithmetic
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}

	m := time.Month(month + 1)
	day := targetDay
	if max := common.DaysInMonth(year, m); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return common.Date{Year: year, Month: m, Day: day}
}
