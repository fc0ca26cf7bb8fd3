package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // the schedule slot zone must load on hosts without zoneinfo

	"github.com/pfrederiksen/mma-calendar/internal/event"
	"github.com/pfrederiksen/mma-calendar/internal/logger"
)

// TimeZone is the zone of every inserted event, whatever the host's zone is
const TimeZone = "America/Los_Angeles"

// Every event occupies 17:00-20:30 local time on its date
const (
	slotStartHour   = 17
	slotStartMinute = 0
	slotEndHour     = 20
	slotEndMinute   = 30
)

// IDMap is the persistent event name → calendar id map
type IDMap interface {
	Lookup(name string) (string, bool)
	Store(name, id string) error
}

// Outcome is what Reconcile did with an event
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	OutcomeSkipped  Outcome = "skipped" // no date
	OutcomeFailed   Outcome = "failed"
)

// Result is the per-event outcome of a reconcile
type Result struct {
	Event   string  `json:"event"`
	Outcome Outcome `json:"outcome"`
	ID      string  `json:"id,omitempty"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// CalendarWriteError wraps a calendar store failure for one event
type CalendarWriteError struct {
	Event string
	Op    string // "insert" or "update"
	Err   error
}

func (e *CalendarWriteError) Error() string {
	return fmt.Sprintf("calendar %s for %q: %v", e.Op, e.Event, e.Err)
}

func (e *CalendarWriteError) Unwrap() error {
	return e.Err
}

// Reconciler inserts or updates calendar entries for parsed events
type Reconciler struct {
	mu      sync.Mutex
	cal     Calendar
	ids     IDMap
	loc     *time.Location
	metrics *logger.Metrics
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithMetrics records outcome counters on m instead of the package default
func WithMetrics(m *logger.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// New creates a Reconciler writing to cal and remembering ids in ids
func New(cal Calendar, ids IDMap, opts ...Option) (*Reconciler, error) {
	loc, err := time.LoadLocation(TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %s: %w", TimeZone, err)
	}

	r := &Reconciler{
		cal:     cal,
		ids:     ids,
		loc:     loc,
		metrics: logger.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ScheduleSlot returns the start and end of an event held on date, in loc
func ScheduleSlot(date time.Time, loc *time.Location) (start, end time.Time) {
	y, m, d := date.Date()
	start = time.Date(y, m, d, slotStartHour, slotStartMinute, 0, 0, loc)
	end = time.Date(y, m, d, slotEndHour, slotEndMinute, 0, 0, loc)
	return start, end
}

// Reconcile writes one event. Dateless events are skipped without touching
// the calendar. A known name only has its description updated; start, end,
// and title are never changed once created.
func (r *Reconciler) Reconcile(ctx context.Context, evt *event.Event, calendarID int64) (Result, error) {
	res := Result{Event: evt.Name}

	if !evt.HasDate() {
		res.Outcome = OutcomeSkipped
		r.metrics.IncrCounter("events.skipped")
		logger.Debug("Skipping dateless event", logger.Fields{"event": evt.Name})
		return res, nil
	}

	// Lookup through Store must not interleave with another pipeline
	r.mu.Lock()
	defer r.mu.Unlock()

	description := evt.Description()

	if id, ok := r.ids.Lookup(evt.Name); ok {
		res.ID = id
		if err := r.cal.UpdateDescription(ctx, id, description); err != nil {
			return r.fail(res, &CalendarWriteError{Event: evt.Name, Op: "update", Err: err})
		}
		res.Outcome = OutcomeUpdated
		r.metrics.IncrCounter("events.updated")
		logger.Info("Updated calendar event", logger.Fields{
			"event":  evt.Name,
			"id":     id,
			"fights": len(evt.Fights),
		})
		return res, nil
	}

	start, end := ScheduleSlot(evt.Date, r.loc)
	id, err := r.cal.Insert(ctx, EventFields{
		CalendarID:  calendarID,
		Title:       evt.Name,
		Description: description,
		Start:       start,
		End:         end,
		TimeZone:    TimeZone,
	})
	if err != nil {
		return r.fail(res, &CalendarWriteError{Event: evt.Name, Op: "insert", Err: err})
	}
	res.ID = id

	if err := r.ids.Store(evt.Name, id); err != nil {
		// The entry exists but the next run will not know about it
		return r.fail(res, fmt.Errorf("recording id %s for %q: %w", id, evt.Name, err))
	}

	res.Outcome = OutcomeInserted
	r.metrics.IncrCounter("events.inserted")
	logger.Info("Inserted calendar event", logger.Fields{
		"event":       evt.Name,
		"id":          id,
		"calendar_id": calendarID,
		"start":       start.Format(time.RFC3339),
	})
	return res, nil
}

func (r *Reconciler) fail(res Result, err error) (Result, error) {
	res.Outcome = OutcomeFailed
	res.Err = err
	res.Error = err.Error()
	r.metrics.IncrCounter("events.failed")
	logger.Error("Calendar write failed", logger.Fields{"event": res.Event}, err)
	return res, err
}

// ReconcileAll reconciles events in order. A failed event does not stop the
// rest; its error is on its Result.
func (r *Reconciler) ReconcileAll(ctx context.Context, events []*event.Event, calendarID int64) []Result {
	results := make([]Result, 0, len(events))
	for _, evt := range events {
		if ctx.Err() != nil {
			err := ctx.Err()
			results = append(results, Result{Event: evt.Name, Outcome: OutcomeFailed, Err: err, Error: err.Error()})
			continue
		}
		res, _ := r.Reconcile(ctx, evt, calendarID)
		results = append(results, res)
	}
	return results
}
