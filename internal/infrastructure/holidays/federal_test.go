package holidays

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/pkg/types/common"
)

func isHoliday(t *testing.T, cal *FederalCalendar, date string) bool {
	t.Helper()
	got, err := cal.IsHoliday(common.MustParseDate(date))
	require.NoError(t, err)
	return got
}

func TestFederalCalendar_2024(t *testing.T) {
	cal := NewFederalCalendar()

	holidays := []string{
		"2024-01-01", // New Year's Day (Monday)
		"2024-01-15", // Martin Luther King Jr. Day
		"2024-02-19", // Washington's Birthday
		"2024-05-27", // Memorial Day
		"2024-06-19", // Juneteenth
		"2024-07-04", // Independence Day
		"2024-09-02", // Labor Day
		"2024-10-14", // Columbus Day
		"2024-11-11", // Veterans Day
		"2024-11-28", // Thanksgiving
		"2024-12-25", // Christmas
	}
	for _, d := range holidays {
		assert.True(t, isHoliday(t, cal, d), d)
	}

	assert.False(t, isHoliday(t, cal, "2024-07-05"))
	assert.False(t, isHoliday(t, cal, "2024-03-01"))
	assert.False(t, isHoliday(t, cal, "2024-11-27"))
}

func TestFederalCalendar_NoHolidayInEarlyMarch(t *testing.T) {
	// Business-day windows that span early March never hit a federal
	// holiday; several statutes depend on that spacing.
	cal := NewFederalCalendar()
	for year := 2020; year <= 2030; year++ {
		for day := 1; day <= 20; day++ {
			d := common.NewDate(year, time.March, day)
			got, err := cal.IsHoliday(d)
			require.NoError(t, err)
			assert.False(t, got, d.String())
		}
	}
}

func TestFederalCalendar_SaturdayObservedFriday(t *testing.T) {
	cal := NewFederalCalendar()

	// Independence Day 2026 falls on a Saturday; it is observed Friday
	// July 3.
	assert.True(t, isHoliday(t, cal, "2026-07-03"))
	assert.False(t, isHoliday(t, cal, "2026-07-04"))

	// Christmas 2021 fell on a Saturday, observed December 24.
	assert.True(t, isHoliday(t, cal, "2021-12-24"))
	assert.False(t, isHoliday(t, cal, "2021-12-25"))
}

func TestFederalCalendar_SundayObservedMonday(t *testing.T) {
	cal := NewFederalCalendar()

	// Independence Day 2027 falls on a Sunday, observed Monday July 5.
	assert.True(t, isHoliday(t, cal, "2027-07-05"))
	assert.False(t, isHoliday(t, cal, "2027-07-04"))

	// Juneteenth 2022 fell on a Sunday, observed Monday June 20.
	assert.True(t, isHoliday(t, cal, "2022-06-20"))
}

func TestFederalCalendar_NewYearObservedInPriorDecember(t *testing.T) {
	cal := NewFederalCalendar()

	// January 1 2022 fell on a Saturday; the federal observance was Friday
	// December 31 2021, which belongs to 2021's holiday set.
	assert.True(t, isHoliday(t, cal, "2021-12-31"))
	assert.False(t, isHoliday(t, cal, "2022-01-01"))

	var names []string
	for _, h := range cal.HolidaysIn(2021) {
		names = append(names, h.Name)
	}
	assert.Contains(t, names, "New Year's Day (observed)")
}

func TestFederalCalendar_HolidaysInSortedAndComplete(t *testing.T) {
	cal := NewFederalCalendar()

	list := cal.HolidaysIn(2024)
	assert.Len(t, list, 11)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].Date.Before(list[i].Date))
	}
	assert.Equal(t, "New Year's Day", list[0].Name)
	assert.Equal(t, "Christmas Day", list[len(list)-1].Name)
}

func TestFederalCalendar_ConcurrentAccess(t *testing.T) {
	cal := NewFederalCalendar()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(year int) {
			defer func() { done <- struct{}{} }()
			for d := 0; d < 100; d++ {
				_, err := cal.IsHoliday(common.NewDate(year, time.July, 4).AddDays(d))
				assert.NoError(t, err)
			}
		}(2020 + i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestHoliday_String(t *testing.T) {
	h := Holiday{Date: common.MustParseDate("2024-07-04"), Name: "Independence Day"}
	assert.Equal(t, "2024-07-04  Independence Day", h.String())
}
