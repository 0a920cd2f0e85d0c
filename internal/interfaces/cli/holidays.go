package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noticeworks/lienclock/internal/config"
	"github.com/noticeworks/lienclock/internal/infrastructure/holidays"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

var (
	holidaysYear         int
	holidaysJurisdiction string
)

// holidayLister is satisfied by the federal and the file-backed calendars.
type holidayLister interface {
	HolidaysIn(year int) []holidays.Holiday
}

// NewHolidaysCmd creates the holidays command.
func NewHolidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the non-business days the engine observes",
		Long: "List the holiday dates business-day arithmetic skips for a year, from\n" +
			"the configured calendar source. With --jurisdiction, a configured\n" +
			"override calendar for that jurisdiction is used instead.",
		RunE: runHolidays,
	}

	f := cmd.Flags()
	f.IntVar(&holidaysYear, "year", 0, "calendar year (default: current year)")
	f.StringVarP(&holidaysJurisdiction, "jurisdiction", "j", "", "jurisdiction whose override calendar to list")

	return cmd
}

func runHolidays(cmd *cobra.Command, _ []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	year := holidaysYear
	if year == 0 {
		year = time.Now().Year()
	}

	lister, source, err := holidayListerFor(cliCtx.Config, holidaysJurisdiction)
	if err != nil {
		return err
	}

	return PrintResult(cmd, &holidaysView{
		Year:     year,
		Source:   source,
		Holidays: lister.HolidaysIn(year),
	})
}

// holidayListerFor picks the calendar to list: a jurisdiction's override
// file when one is configured and asked for, the configured fallback source
// otherwise.
func holidayListerFor(cfg *config.Config, jurisdiction string) (holidayLister, string, error) {
	if jurisdiction != "" {
		code := deadline.NormalizeJurisdiction(jurisdiction)
		if !code.IsValid() {
			return nil, "", errors.UnknownJurisdiction(jurisdiction)
		}
		for raw, path := range cfg.Holidays.Overrides {
			if deadline.NormalizeJurisdiction(raw) == code {
				cal, err := holidays.LoadFile(path)
				if err != nil {
					return nil, "", err
				}
				return cal, fmt.Sprintf("override for %s (%s)", code, path), nil
			}
		}
		// No override configured; the jurisdiction uses the fallback.
	}

	if cfg.Holidays.Source == config.HolidaySourceFile {
		cal, err := holidays.LoadFile(cfg.Holidays.File)
		if err != nil {
			return nil, "", err
		}
		return cal, fmt.Sprintf("file (%s)", cfg.Holidays.File), nil
	}
	return holidays.NewFederalCalendar(), "federal", nil
}

// holidaysView renders a year's holiday listing.
type holidaysView struct {
	Year     int                `json:"year"`
	Source   string             `json:"source"`
	Holidays []holidays.Holiday `json:"holidays"`
}

func (v *holidaysView) TableHeaders() []string {
	return []string{"DATE", "HOLIDAY"}
}

func (v *holidaysView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Holidays))
	for _, h := range v.Holidays {
		rows = append(rows, []string{h.Date.String(), h.Name})
	}
	return rows
}

func (v *holidaysView) String() string {
	if len(v.Holidays) == 0 {
		return fmt.Sprintf("no holidays for %d in the %s calendar\n", v.Year, v.Source)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d holidays (%s)\n", v.Year, v.Source)
	for _, h := range v.Holidays {
		fmt.Fprintf(&sb, "  %s\n", h)
	}
	return sb.String()
}
