// Package holidays supplies the holiday calendars behind business-day
// arithmetic: a computed US federal calendar valid for any year, a
// file-backed calendar for jurisdiction-specific or company observances, and
// the per-jurisdiction provider the engine consults.
package holidays

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noticeworks/lienclock/pkg/types/common"
)

// Holiday is one observed non-business date.
type Holiday struct {
	Date common.Date `json:"date"`
	Name string      `json:"name"`
}

// FederalCalendar computes the eleven US federal holidays for any year,
// applying the federal observance shift: holidays falling on Saturday are
// observed the Friday before, on Sunday the Monday after. Computed years are
// cached; the calendar never runs out of range.
type FederalCalendar struct {
	mu    sync.RWMutex
	years map[int]map[common.Date]string
}

// NewFederalCalendar returns an empty calendar; years are computed on first
// use.
func NewFederalCalendar() *FederalCalendar {
	return &FederalCalendar{years: make(map[int]map[common.Date]string)}
}

// IsHoliday reports whether d is an observed federal holiday. It never
// fails: any year can be computed.
func (c *FederalCalendar) IsHoliday(d common.Date) (bool, error) {
	_, ok := c.yearSet(d.Year)[d]
	return ok, nil
}

// HolidaysIn lists the observed holidays of a year in date order.
func (c *FederalCalendar) HolidaysIn(year int) []Holiday {
	set := c.yearSet(year)
	out := make([]Holiday, 0, len(set))
	for date, name := range set {
		out = append(out, Holiday{Date: date, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (c *FederalCalendar) yearSet(year int) map[common.Date]string {
	c.mu.RLock()
	set, ok := c.years[year]
	c.mu.RUnlock()
	if ok {
		return set
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok = c.years[year]; ok {
		return set
	}
	set = computeFederalYear(year)
	c.years[year] = set
	return set
}

// computeFederalYear builds the observed holiday set that falls inside the
// given civil year. New Year's Day of the following year observes on
// December 31 when January 1 lands on a Saturday, so that shifted date
// belongs to this year's set.
func computeFederalYear(year int) map[common.Date]string {
	set := make(map[common.Date]string, 12)

	add := func(d common.Date, name string) {
		observed := observe(d)
		if observed.Year != year {
			// Shifted out of this year entirely; the neighbouring year's
			// set carries it.
			return
		}
		if !observed.Equal(d) {
			name += " (observed)"
		}
		set[observed] = name
	}

	add(common.NewDate(year, time.January, 1), "New Year's Day")
	add(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day")
	add(nthWeekday(year, time.February, time.Monday, 3), "Washington's Birthday")
	add(lastWeekday(year, time.May, time.Monday), "Memorial Day")
	add(common.NewDate(year, time.June, 19), "Juneteenth National Independence Day")
	add(common.NewDate(year, time.July, 4), "Independence Day")
	add(nthWeekday(year, time.September, time.Monday, 1), "Labor Day")
	add(nthWeekday(year, time.October, time.Monday, 2), "Columbus Day")
	add(common.NewDate(year, time.November, 11), "Veterans Day")
	add(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day")
	add(common.NewDate(year, time.December, 25), "Christmas Day")

	// New Year's Day of the next year observed on this December 31.
	next := common.NewDate(year+1, time.January, 1)
	if observed := observe(next); observed.Year == year {
		set[observed] = "New Year's Day (observed)"
	}

	return set
}

// observe applies the federal Saturday-to-Friday / Sunday-to-Monday shift.
func observe(d common.Date) common.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	default:
		return d
	}
}

// nthWeekday returns the nth given weekday of a month (n starting at 1).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) common.Date {
	d := common.NewDate(year, month, 1)
	for d.Weekday() != weekday {
		d = d.AddDays(1)
	}
	return d.AddDays(7 * (n - 1))
}

// lastWeekday returns the final given weekday of a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) common.Date {
	d := common.NewDate(year, month, common.DaysInMonth(year, month))
	for d.Weekday() != weekday {
		d = d.AddDays(-1)
	}
	return d
}

// String describes the holiday for listings.
func (h Holiday) String() string {
	return fmt.Sprintf("%s  %s", h.Date, h.Name)
}
