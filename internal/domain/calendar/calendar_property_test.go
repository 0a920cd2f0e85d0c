//go:build property
// +build property

// Property-based tests for the calendar arithmetic. Run with:
//
//	go test -tags=property ./internal/domain/calendar/
package calendar

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/noticeworks/lienclock/pkg/types/common"
)

func genDate() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(2000, 2100),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
	).Map(func(vals []interface{}) common.Date {
		return common.NewDate(vals[0].(int), time.Month(vals[1].(int)), vals[2].(int))
	})
}

// calendarFunc adapts a predicate to the Calendar interface.
type calendarFunc func(common.Date) bool

func (f calendarFunc) IsHoliday(d common.Date) (bool, error) { return f(d), nil }

// everyFifthDay marks day-of-month multiples of five as holidays, a dense
// synthetic calendar that forces frequent skips.
func everyFifthDay() Calendar {
	return calendarFunc(func(d common.Date) bool { return d.Day%5 == 0 })
}

func TestAddCalendarDaysProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("shifts equivariantly with the start date", prop.ForAll(
		func(d common.Date, n, shift int) bool {
			fromShifted := AddCalendarDays(AddCalendarDays(d, shift), n)
			shiftedAfter := AddCalendarDays(AddCalendarDays(d, n), shift)
			return fromShifted.Equal(shiftedAfter)
		},
		genDate(),
		gen.IntRange(0, 365),
		gen.IntRange(-180, 180),
	))

	properties.Property("negation round-trips", prop.ForAll(
		func(d common.Date, n int) bool {
			return AddCalendarDays(AddCalendarDays(d, n), -n).Equal(d)
		},
		genDate(),
		gen.IntRange(-400, 400),
	))

	properties.TestingRun(t)
}

func TestAddBusinessDaysProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("zero count is the identity", prop.ForAll(
		func(d common.Date) bool {
			got, err := AddBusinessDays(d, 0, NoHolidays())
			return err == nil && got.Equal(d)
		},
		genDate(),
	))

	properties.Property("result never lands on a weekend", prop.ForAll(
		func(d common.Date, n int) bool {
			got, err := AddBusinessDays(d, n, NoHolidays())
			if err != nil {
				return false
			}
			wd := got.Weekday()
			return wd != time.Saturday && wd != time.Sunday
		},
		genDate(),
		gen.IntRange(1, 120),
	))

	properties.Property("result never lands on a holiday or weekend", prop.ForAll(
		func(d common.Date, n int) bool {
			cal := everyFifthDay()
			got, err := AddBusinessDays(d, n, cal)
			if err != nil {
				return false
			}
			if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
				return false
			}
			holiday, err := cal.IsHoliday(got)
			return err == nil && !holiday
		},
		genDate(),
		gen.IntRange(1, 120),
	))

	properties.Property("result is strictly after the start for positive counts", prop.ForAll(
		func(d common.Date, n int) bool {
			got, err := AddBusinessDays(d, n, NoHolidays())
			return err == nil && got.After(d)
		},
		genDate(),
		gen.IntRange(1, 120),
	))

	properties.Property("adding n then m equals adding n+m", prop.ForAll(
		func(d common.Date, n, m int) bool {
			step, err := AddBusinessDays(d, n, NoHolidays())
			if err != nil {
				return false
			}
			two, err := AddBusinessDays(step, m, NoHolidays())
			if err != nil {
				return false
			}
			one, err := AddBusinessDays(d, n+m, NoHolidays())
			if err != nil {
				return false
			}
			return one.Equal(two)
		},
		genDate(),
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestAddMonthsClampedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("result day never exceeds the target day", prop.ForAll(
		func(d common.Date, months, targetDay int) bool {
			got := AddMonthsClamped(d, months, targetDay)
			return got.Day <= targetDay && got.Day >= 1
		},
		genDate(),
		gen.IntRange(0, 24),
		gen.IntRange(1, 31),
	))

	properties.Property("result is always a real calendar date", prop.ForAll(
		func(d common.Date, months, targetDay int) bool {
			got := AddMonthsClamped(d, months, targetDay)
			return got.Day <= common.DaysInMonth(got.Year, got.Month)
		},
		genDate(),
		gen.IntRange(0, 24),
		gen.IntRange(1, 31),
	))

	properties.Property("clamping is idempotent", prop.ForAll(
		func(d common.Date, months, targetDay int) bool {
			first := AddMonthsClamped(d, months, targetDay)
			again := AddMonthsClamped(first, 0, targetDay)
			return again.Equal(first)
		},
		genDate(),
		gen.IntRange(0, 24),
		gen.IntRange(1, 31),
	))

	properties.Property("positive months never move the date backwards", prop.ForAll(
		func(d common.Date, months, targetDay int) bool {
			got := AddMonthsClamped(d, months, targetDay)
			return !got.Before(common.NewDate(d.Year, d.Month, 1))
		},
		genDate(),
		gen.IntRange(0, 24),
		gen.IntRange(1, 31),
	))

	properties.TestingRun(t)
}
