package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/pfrederiksen/mma-calendar/internal/reconcile"
)

const (
	ProductID = "-//MMA Calendar//mma-calendar//EN"

	localTimeFormat = "20060102T150405"
)

var (
	ErrUnknownCalendar = errors.New("unknown calendar")
	ErrEventNotFound   = errors.New("calendar event not found")
)

// Source is one configured calendar and the file holding it
type Source struct {
	ID      int64
	Name    string
	Path    string
	Primary bool
	Visible bool
}

// StoredEvent is a VEVENT read back from a calendar file
type StoredEvent struct {
	ID          string
	CalendarID  int64
	Title       string
	Description string
	Start       string // raw DTSTART value
	TimeZone    string // DTSTART TZID, empty for UTC
	Sequence    int
}

// ICSStore implements reconcile.Calendar over a set of .ics files.
// All file access is serialized.
type ICSStore struct {
	mu      sync.Mutex
	sources []Source
	now     func() time.Time
}

// NewICSStore creates a store over sources. Files are created on first insert.
func NewICSStore(sources []Source) *ICSStore {
	return &ICSStore{
		sources: sources,
		now:     time.Now,
	}
}

// Calendars lists the configured calendars
func (s *ICSStore) Calendars(ctx context.Context) ([]reconcile.CalendarInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos := make([]reconcile.CalendarInfo, 0, len(s.sources))
	for _, src := range s.sources {
		infos = append(infos, reconcile.CalendarInfo{
			ID:      src.ID,
			Name:    src.Name,
			Primary: src.Primary,
			Visible: src.Visible,
		})
	}
	return infos, nil
}

// Insert adds a VEVENT to the calendar named by fields.CalendarID and
// returns its UID
func (s *ICSStore) Insert(ctx context.Context, fields reconcile.EventFields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.source(fields.CalendarID)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownCalendar, fields.CalendarID)
	}

	cal, err := load(src.Path)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	id := uuid.NewString()

	if fields.TimeZone != "" {
		ensureTimezone(cal, fields.TimeZone)
	}

	ve := cal.AddEvent(id)
	ve.SetDtStampTime(now)
	ve.SetCreatedTime(now)
	ve.SetModifiedAt(now)
	ve.SetSummary(fields.Title)
	ve.SetDescription(fields.Description)
	setTime(ve, ical.ComponentPropertyDtStart, fields.Start, fields.TimeZone)
	setTime(ve, ical.ComponentPropertyDtEnd, fields.End, fields.TimeZone)
	ve.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
	ve.SetProperty(ical.ComponentPropertySequence, "0")

	if err := save(src.Path, cal); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateDescription rewrites the DESCRIPTION of the event with UID id,
// wherever it lives, and bumps its SEQUENCE
func (s *ICSStore) UpdateDescription(ctx context.Context, id, description string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, src := range s.sources {
		cal, err := load(src.Path)
		if err != nil {
			return err
		}

		for _, ve := range cal.Events() {
			if ve.Id() != id {
				continue
			}
			ve.SetDescription(description)
			ve.SetModifiedAt(s.now().UTC())
			ve.SetProperty(ical.ComponentPropertySequence, strconv.Itoa(sequence(ve)+1))
			return save(src.Path, cal)
		}
	}

	return fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

// Events reads back every event in a calendar
func (s *ICSStore) Events(calendarID int64) ([]StoredEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.source(calendarID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCalendar, calendarID)
	}

	cal, err := load(src.Path)
	if err != nil {
		return nil, err
	}

	events := make([]StoredEvent, 0)
	for _, ve := range cal.Events() {
		stored := StoredEvent{
			ID:          ve.Id(),
			CalendarID:  calendarID,
			Title:       propValue(ve, ical.ComponentPropertySummary),
			Description: propValue(ve, ical.ComponentPropertyDescription),
			Sequence:    sequence(ve),
		}
		if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
			stored.Start = p.Value
			if tz, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok && len(tz) > 0 {
				stored.TimeZone = tz[0]
			}
		}
		events = append(events, stored)
	}
	return events, nil
}

func (s *ICSStore) source(id int64) (Source, bool) {
	for _, src := range s.sources {
		if src.ID == id {
			return src, true
		}
	}
	return Source{}, false
}

// setTime writes a DATE-TIME property in local time with a TZID parameter,
// or in UTC when tz is empty
func setTime(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time, tz string) {
	if tz == "" {
		ve.SetProperty(prop, t.UTC().Format(localTimeFormat+"Z"))
		return
	}
	ve.SetProperty(prop, t.Format(localTimeFormat), &ical.KeyValues{
		Key:   string(ical.ParameterTzid),
		Value: []string{tz},
	})
}

// tzRule is one STANDARD or DAYLIGHT observance of a VTIMEZONE
type tzRule struct {
	daylight   bool
	start      string
	rrule      string
	offsetFrom string
	offsetTo   string
	name       string
}

// zoneRules holds the VTIMEZONE definitions for zones events are written in
var zoneRules = map[string][]tzRule{
	"America/Los_Angeles": {
		{daylight: true, start: "19700308T020000", rrule: "FREQ=YEARLY;BYMONTH=3;BYDAY=2SU", offsetFrom: "-0800", offsetTo: "-0700", name: "PDT"},
		{daylight: false, start: "19701101T020000", rrule: "FREQ=YEARLY;BYMONTH=11;BYDAY=1SU", offsetFrom: "-0700", offsetTo: "-0800", name: "PST"},
	},
}

// ensureTimezone adds a VTIMEZONE for tz unless cal already has one.
// Zones without rules are left to the client.
func ensureTimezone(cal *ical.Calendar, tz string) {
	rules, ok := zoneRules[tz]
	if !ok {
		return
	}
	for _, c := range cal.Components {
		vt, ok := c.(*ical.VTimezone)
		if !ok {
			continue
		}
		if p := vt.GetProperty(ical.ComponentProperty(ical.PropertyTzid)); p != nil && p.Value == tz {
			return
		}
	}

	vt := cal.AddTimezone(tz)
	vt.SetProperty(ical.ComponentProperty(ical.PropertyTzid), tz)
	for _, r := range rules {
		var obs interface {
			SetProperty(ical.ComponentProperty, string, ...ical.PropertyParameter)
		}
		if r.daylight {
			d := &ical.Daylight{}
			vt.Components = append(vt.Components, d)
			obs = d
		} else {
			st := &ical.Standard{}
			vt.Components = append(vt.Components, st)
			obs = st
		}
		obs.SetProperty(ical.ComponentPropertyDtStart, r.start)
		obs.SetProperty(ical.ComponentPropertyRrule, r.rrule)
		obs.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetfrom), r.offsetFrom)
		obs.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetto), r.offsetTo)
		obs.SetProperty(ical.ComponentProperty(ical.PropertyTzname), r.name)
	}
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func sequence(ve *ical.VEvent) int {
	n, err := strconv.Atoi(propValue(ve, ical.ComponentPropertySequence))
	if err != nil {
		return 0
	}
	return n
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	return cal
}

// load parses a calendar file; a missing file is an empty calendar
func load(path string) (*ical.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newCalendar(), nil
		}
		return nil, fmt.Errorf("opening calendar: %w", err)
	}
	defer f.Close()

	cal, err := ical.ParseCalendar(f)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar %s: %w", path, err)
	}
	return cal, nil
}

// save writes via a temp file and rename so readers never see a partial file
func save(path string, cal *ical.Calendar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating calendar directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(cal.Serialize()), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing calendar: %w", err)
	}
	return nil
}
