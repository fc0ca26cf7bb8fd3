package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoCalendarAvailable means no visible calendar exists to insert into
var ErrNoCalendarAvailable = errors.New("no visible calendar available")

// CalendarInfo describes one calendar offered by the calendar store
type CalendarInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	Visible bool   `json:"visible"`
}

// EventFields is everything written when a calendar entry is created
type EventFields struct {
	CalendarID  int64
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Calendar is the external calendar store
type Calendar interface {
	// Calendars lists every calendar, visible or not
	Calendars(ctx context.Context) ([]CalendarInfo, error)
	// Insert creates an entry and returns its id
	Insert(ctx context.Context, fields EventFields) (string, error)
	// UpdateDescription replaces the description of an existing entry
	UpdateDescription(ctx context.Context, id, description string) error
}

// ResolveDefaultCalendarID picks the calendar new events go into.
// Callers resolve it once per run and pass it to Reconcile.
func ResolveDefaultCalendarID(ctx context.Context, cal Calendar) (int64, error) {
	cals, err := cal.Calendars(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing calendars: %w", err)
	}
	return SelectDefault(cals)
}

// SelectDefault prefers the visible primary calendar with the lowest id,
// then the visible calendar with the lowest id.
func SelectDefault(cals []CalendarInfo) (int64, error) {
	visible := make([]CalendarInfo, 0, len(cals))
	for _, c := range cals {
		if c.Visible {
			visible = append(visible, c)
		}
	}
	if len(visible) == 0 {
		return 0, ErrNoCalendarAvailable
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].ID < visible[j].ID
	})

	for _, c := range visible {
		if c.Primary {
			return c.ID, nil
		}
	}
	return visible[0].ID, nil
}
