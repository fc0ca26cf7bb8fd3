// Package storage persists the mapping from event name to calendar event id.
//
// The map is what keeps repeated scrape runs from creating duplicate calendar
// entries: a name that is already present is updated in place rather than
// inserted again. It lives in a single JSON file in the data directory and is
// rewritten after every insert.
package storage
