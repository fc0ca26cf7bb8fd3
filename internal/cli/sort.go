package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/mma-calendar/internal/event"
)

// SortOrder represents the available sorting options for parsed events
type SortOrder string

const (
	SortByPage SortOrder = "page"
	SortByDate SortOrder = "date"
	SortByName SortOrder = "name"
)

// sortEvents sorts events in place; SortByPage keeps schedule order
func sortEvents(events []*event.Event, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByName:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Name) < strings.ToLower(events[j].Name)
		})
	}
}

// compareByDate orders dated events first, earliest first
func compareByDate(i, j *event.Event) bool {
	if i.HasDate() && j.HasDate() {
		return i.Date.Before(j.Date)
	}
	return i.HasDate() && !j.HasDate()
}
