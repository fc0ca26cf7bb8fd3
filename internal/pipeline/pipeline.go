// Package pipeline runs one scrape-and-reconcile pass over every event type.
//
// Each event type is fetched and parsed in its own goroutine; as soon as a
// source has parsed it reconciles its events. Reconciles from different
// sources may interleave, the Reconciler serializes each id lookup and write.
// A failure in one source never stops the other.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/mma-calendar/internal/event"
	"github.com/pfrederiksen/mma-calendar/internal/logger"
	"github.com/pfrederiksen/mma-calendar/internal/reconcile"
	"github.com/pfrederiksen/mma-calendar/internal/scraper"
)

// Fetcher fetches and parses the schedule for one event type
type Fetcher interface {
	FetchEvents(ctx context.Context, eventType string) (*scraper.ParseResult, error)
}

// SourceReport is the outcome for one event type
type SourceReport struct {
	EventType  string             `json:"event_type"`
	Events     []*event.Event     `json:"events"`
	Results    []reconcile.Result `json:"results"`
	Terminated bool               `json:"terminated"`
	Err        error              `json:"-"`
	Error      string             `json:"error,omitempty"`
}

// Failed reports whether the source or any of its events failed
func (s *SourceReport) Failed() bool {
	if s.Err != nil {
		return true
	}
	for _, r := range s.Results {
		if r.Outcome == reconcile.OutcomeFailed {
			return true
		}
	}
	return false
}

// Count returns how many events ended with outcome
func (s *SourceReport) Count(outcome reconcile.Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// Report is the outcome of one run
type Report struct {
	StartedAt  time.Time       `json:"started_at"`
	Duration   time.Duration   `json:"duration"`
	CalendarID int64           `json:"calendar_id"`
	Sources    []*SourceReport `json:"sources"`
}

// Failed reports whether any source failed
func (r *Report) Failed() bool {
	for _, s := range r.Sources {
		if s.Failed() {
			return true
		}
	}
	return false
}

// Pipeline wires the fetcher, calendar, and reconciler together
type Pipeline struct {
	fetcher    Fetcher
	calendar   reconcile.Calendar
	reconciler *reconcile.Reconciler
	metrics    *logger.Metrics
}

// New creates a Pipeline
func New(fetcher Fetcher, cal reconcile.Calendar, reconciler *reconcile.Reconciler) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		calendar:   cal,
		reconciler: reconciler,
		metrics:    logger.DefaultMetrics(),
	}
}

// WithMetrics records fetch metrics on m instead of the package default
func (p *Pipeline) WithMetrics(m *logger.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Run resolves the default calendar once, then scrapes and reconciles every
// event type concurrently. The returned error is only for failures that stop
// the whole run (no calendar available); per-source and per-event failures
// are on the Report.
func (p *Pipeline) Run(ctx context.Context, eventTypes []string) (*Report, error) {
	report := &Report{
		StartedAt: time.Now().UTC(),
		Sources:   make([]*SourceReport, len(eventTypes)),
	}

	calendarID, err := reconcile.ResolveDefaultCalendarID(ctx, p.calendar)
	if err != nil {
		logger.Error("Cannot resolve default calendar", nil, err)
		return report, fmt.Errorf("resolving default calendar: %w", err)
	}
	report.CalendarID = calendarID
	logger.Info("Resolved default calendar", logger.Fields{"calendar_id": calendarID})

	var wg sync.WaitGroup
	for i, eventType := range eventTypes {
		wg.Add(1)
		go func(i int, eventType string) {
			defer wg.Done()
			report.Sources[i] = p.runSource(ctx, eventType, calendarID)
		}(i, eventType)
	}
	wg.Wait()

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

func (p *Pipeline) runSource(ctx context.Context, eventType string, calendarID int64) *SourceReport {
	src := &SourceReport{EventType: eventType}

	start := time.Now()
	res, err := p.fetcher.FetchEvents(ctx, eventType)
	p.metrics.RecordTiming("fetch."+eventType, time.Since(start))
	if err != nil {
		p.metrics.IncrCounter("fetch.errors")
		src.Err = err
		src.Error = err.Error()
		logger.Error("Error loading fights", logger.Fields{"source": eventType}, err)
		return src
	}

	src.Events = res.Events
	src.Terminated = res.Terminated
	p.metrics.AddCounter("events.parsed", int64(len(res.Events)))

	if !res.Terminated {
		logger.Warn("Schedule ended without the terminator; page layout may have changed", logger.Fields{
			"source":     eventType,
			"terminator": scraper.Terminator,
			"events":     len(res.Events),
		})
	}
	logger.Info("Parsed schedule", logger.Fields{
		"source":      eventType,
		"events":      len(res.Events),
		"date_errors": len(res.DateErrors),
	})

	src.Results = p.reconciler.ReconcileAll(ctx, res.Events, calendarID)
	return src
}
