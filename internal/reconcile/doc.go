// Package reconcile writes parsed events into a calendar, one entry per event name.
//
// A Reconciler looks each event up in the id map: unknown names are inserted
// into the default calendar in a fixed 17:00-20:30 America/Los_Angeles slot,
// known names only get their description (the fight card) rewritten. The
// lookup, insert, and id write happen under one lock so concurrent scrape
// pipelines cannot insert the same event twice.
package reconcile
