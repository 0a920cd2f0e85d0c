package holidays

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
)

// fileDoc is the JSON shape of a holiday file: a display name plus the
// observed dates, already shifted however the issuing authority shifts them.
type fileDoc struct {
	Name     string    `json:"name"`
	Holidays []Holiday `json:"holidays"`
}

// FileCalendar serves a fixed holiday list loaded from a JSON file. Unlike
// the computed federal calendar it has a bounded range: it can only answer
// for years its data covers, and reports CalendarUnavailable outside them,
// because treating an uncovered year as holiday-free would silently produce
// wrong business-day deadlines.
type FileCalendar struct {
	name    string
	dates   map[common.Date]string
	minYear int
	maxYear int
}

// LoadFile reads and validates a holiday file.
func LoadFile(path string) (*FileCalendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCalendarUnavailable,
			fmt.Sprintf("read holiday file %s", path))
	}
	return parseFile(path, raw)
}

func parseFile(path string, raw []byte) (*FileCalendar, error) {
	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCalendarUnavailable,
			fmt.Sprintf("malformed holiday file %s", path))
	}
	if len(doc.Holidays) == 0 {
		return nil, errors.CalendarUnavailable(
			fmt.Sprintf("holiday file %s lists no holidays", path))
	}

	cal := &FileCalendar{
		name:  doc.Name,
		dates: make(map[common.Date]string, len(doc.Holidays)),
	}
	if cal.name == "" {
		cal.name = path
	}
	for _, h := range doc.Holidays {
		if h.Date.IsZero() {
			return nil, errors.CalendarUnavailable(
				fmt.Sprintf("holiday file %s has an entry without a date", path))
		}
		cal.dates[h.Date] = h.Name
		if cal.minYear == 0 || h.Date.Year < cal.minYear {
			cal.minYear = h.Date.Year
		}
		if h.Date.Year > cal.maxYear {
			cal.maxYear = h.Date.Year
		}
	}
	return cal, nil
}

// Name identifies the calendar in logs and CLI output.
func (c *FileCalendar) Name() string { return c.name }

// YearRange reports the inclusive span of years the file covers.
func (c *FileCalendar) YearRange() (min, max int) { return c.minYear, c.maxYear }

// IsHoliday reports whether d appears in the file. Dates outside the file's
// year range cannot be answered and fail with CalendarUnavailable.
func (c *FileCalendar) IsHoliday(d common.Date) (bool, error) {
	if d.Year < c.minYear || d.Year > c.maxYear {
		return false, errors.CalendarUnavailable(
			fmt.Sprintf("holiday calendar %q covers %d..%d, cannot answer for %s",
				c.name, c.minYear, c.maxYear, d))
	}
	_, ok := c.dates[d]
	return ok, nil
}

// HolidaysIn lists the file's holidays for one year in date order.
func (c *FileCalendar) HolidaysIn(year int) []Holiday {
	var out []Holiday
	for date, name := range c.dates {
		if date.Year == year {
			out = append(out, Holiday{Date: date, Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
