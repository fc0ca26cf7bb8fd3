// Package event provides the MMA event record produced by the schedule parser.
//
// An Event is keyed by its name (for example "UFC 210: Cormier vs. Johnson"),
// carries an optional date parsed from the schedule's date headings, and
// accumulates fight announcements in the order they appear on the page.
// The fights joined by newlines form the calendar entry description.
package event
