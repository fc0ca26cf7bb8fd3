// Package cli implements the command-line interface for mma-calendar.
//
// The cli package provides the Cobra-based commands: sync (one scrape and
// calendar update), watch (sync on a cron schedule), calendars (list the
// configured calendars), and parse (show what the schedule parser sees).
// It wires config, scraper, storage, calendar, reconcile, and pipeline together.
package cli
