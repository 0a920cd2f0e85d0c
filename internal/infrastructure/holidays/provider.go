package holidays

import (
	"fmt"

	"github.com/noticeworks/lienclock/internal/domain/calendar"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// Provider dispatches holiday calendars per jurisdiction: a registered
// override when one exists, the default calendar otherwise. Registration
// happens at wiring time, before the provider is shared; CalendarFor is then
// safe for concurrent use.
type Provider struct {
	fallback  calendar.Calendar
	overrides map[deadline.JurisdictionCode]calendar.Calendar
}

// NewProvider builds a provider around a default calendar.
func NewProvider(fallback calendar.Calendar) *Provider {
	return &Provider{
		fallback:  fallback,
		overrides: make(map[deadline.JurisdictionCode]calendar.Calendar),
	}
}

// NewFederalProvider builds a provider that serves the computed federal
// calendar for every jurisdiction.
func NewFederalProvider() *Provider {
	return NewProvider(NewFederalCalendar())
}

// Register installs a jurisdiction-specific calendar, replacing any earlier
// registration for the same code.
func (p *Provider) Register(code deadline.JurisdictionCode, cal calendar.Calendar) *Provider {
	p.overrides[code] = cal
	return p
}

// CalendarFor returns the calendar for a jurisdiction.
func (p *Provider) CalendarFor(code deadline.JurisdictionCode) (calendar.Calendar, error) {
	if cal, ok := p.overrides[code]; ok {
		return cal, nil
	}
	if p.fallback == nil {
		return nil, errors.CalendarUnavailable(
			fmt.Sprintf("no holiday calendar configured for %s", code))
	}
	return p.fallback, nil
}
