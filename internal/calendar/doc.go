// Package calendar is a file-backed calendar store.
//
// Each configured calendar is one iCalendar (.ics) file that any calendar app
// can subscribe to or import. Entries are VEVENTs keyed by a random UUID; the
// reconciler inserts them and later rewrites their DESCRIPTION as fight cards
// fill in.
package calendar
