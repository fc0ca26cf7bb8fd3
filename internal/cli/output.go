package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/mma-calendar/internal/event"
	"github.com/pfrederiksen/mma-calendar/internal/pipeline"
	"github.com/pfrederiksen/mma-calendar/internal/reconcile"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// CalendarRow is one line of the calendars listing
type CalendarRow struct {
	reconcile.CalendarInfo
	Path    string `json:"path"`
	Events  int    `json:"events"`
	Default bool   `json:"default"`
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteReport writes a sync report
func WriteReport(w io.Writer, report *pipeline.Report, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeReportText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeReportText(w io.Writer, report *pipeline.Report, verbose bool) error {
	var inserted, updated, skipped, failed int

	for _, src := range report.Sources {
		fmt.Fprintf(w, "\n%s Events Loaded Into Calendar:\n", strings.ToUpper(src.EventType))
		if src.Err != nil {
			fmt.Fprintln(w, "  Error loading fights")
			if verbose {
				fmt.Fprintf(w, "     %v\n", src.Err)
			}
			continue
		}
		if len(src.Results) == 0 {
			fmt.Fprintln(w, "  No events found.")
		}

		for i, res := range src.Results {
			fmt.Fprintf(w, "  Event: %s [%s]\n", res.Event, res.Outcome)
			if res.Err != nil {
				fmt.Fprintf(w, "     Error: %v\n", res.Err)
			}
			if verbose && i < len(src.Events) {
				writeEventDetails(w, src.Events[i], "     ")
			}
		}

		inserted += src.Count(reconcile.OutcomeInserted)
		updated += src.Count(reconcile.OutcomeUpdated)
		skipped += src.Count(reconcile.OutcomeSkipped)
		failed += src.Count(reconcile.OutcomeFailed)
	}

	fmt.Fprintf(w, "\nTotal: %d inserted, %d updated, %d skipped, %d failed\n", inserted, updated, skipped, failed)
	return nil
}

// WriteEvents writes parsed events without calendar outcomes
func WriteEvents(w io.Writer, events []*event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, events)
	case FormatText:
		if len(events) == 0 {
			fmt.Fprintln(w, "No events found.")
			return nil
		}
		for _, evt := range events {
			fmt.Fprintf(w, "Event: %s\n", evt.Name)
			writeEventDetails(w, evt, "     ")
		}
		fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeEventDetails(w io.Writer, evt *event.Event, indent string) {
	if evt.HasDate() {
		fmt.Fprintf(w, "%sDate: %s\n", indent, evt.Date.Format("January 2, 2006"))
	} else {
		fmt.Fprintf(w, "%sDate: unknown\n", indent)
	}
	for _, fight := range evt.Fights {
		fmt.Fprintf(w, "%s- %s\n", indent, fight)
	}
}

// WriteCalendars writes the calendars listing
func WriteCalendars(w io.Writer, rows []CalendarRow, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatText:
		for _, row := range rows {
			var flags []string
			if row.Default {
				flags = append(flags, "default")
			}
			if row.Primary {
				flags = append(flags, "primary")
			}
			if !row.Visible {
				flags = append(flags, "hidden")
			}
			suffix := ""
			if len(flags) > 0 {
				suffix = " (" + strings.Join(flags, ", ") + ")"
			}
			fmt.Fprintf(w, "%d: %s%s\n", row.ID, row.Name, suffix)
			fmt.Fprintf(w, "     %s, %d events\n", row.Path, row.Events)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
