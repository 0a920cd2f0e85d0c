package holidays

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
)

func writeHolidayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holidays.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleFile = `{
  "name": "state courts calendar",
  "holidays": [
    {"date": "2024-01-01", "name": "New Year's Day"},
    {"date": "2024-03-26", "name": "Kuhio Day"},
    {"date": "2025-03-26", "name": "Kuhio Day"}
  ]
}`

func TestLoadFile(t *testing.T) {
	cal, err := LoadFile(writeHolidayFile(t, sampleFile))
	require.NoError(t, err)

	assert.Equal(t, "state courts calendar", cal.Name())
	min, max := cal.YearRange()
	assert.Equal(t, 2024, min)
	assert.Equal(t, 2025, max)

	got, err := cal.IsHoliday(common.MustParseDate("2024-03-26"))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = cal.IsHoliday(common.MustParseDate("2024-03-27"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestFileCalendar_OutOfRange(t *testing.T) {
	cal, err := LoadFile(writeHolidayFile(t, sampleFile))
	require.NoError(t, err)

	_, err = cal.IsHoliday(common.MustParseDate("2031-01-06"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCalendarUnavailable))
	assert.Contains(t, err.Error(), "2024..2025")

	_, err = cal.IsHoliday(common.MustParseDate("2023-12-31"))
	require.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCalendarUnavailable))
}

func TestLoadFile_Malformed(t *testing.T) {
	_, err := LoadFile(writeHolidayFile(t, `{"holidays": [`))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCalendarUnavailable))
}

func TestLoadFile_Empty(t *testing.T) {
	_, err := LoadFile(writeHolidayFile(t, `{"name":"empty","holidays":[]}`))
	require.Error(t, err)
}

func TestLoadFile_EntryWithoutDate(t *testing.T) {
	_, err := LoadFile(writeHolidayFile(t, `{"holidays":[{"name":"mystery day"}]}`))
	require.Error(t, err)
}

func TestLoadFile_DefaultsNameToPath(t *testing.T) {
	path := writeHolidayFile(t, `{"holidays":[{"date":"2024-01-01","name":"New Year"}]}`)
	cal, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, cal.Name())
}

func TestFileCalendar_HolidaysIn(t *testing.T) {
	cal, err := LoadFile(writeHolidayFile(t, sampleFile))
	require.NoError(t, err)

	list := cal.HolidaysIn(2024)
	require.Len(t, list, 2)
	assert.Equal(t, "New Year's Day", list[0].Name)
	assert.Equal(t, "Kuhio Day", list[1].Name)

	assert.Len(t, cal.HolidaysIn(2025), 1)
	assert.Empty(t, cal.HolidaysIn(2030))
}
