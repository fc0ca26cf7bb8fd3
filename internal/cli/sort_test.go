package cli

import (
	"testing"
	"time"

	"github.com/pfrederiksen/mma-calendar/internal/event"
)

func newEvent(name string, date time.Time) *event.Event {
	evt := event.NewEvent(name, "ufc")
	evt.Date = date
	return evt
}

func names(events []*event.Event) []string {
	out := make([]string, len(events))
	for i, evt := range events {
		out[i] = evt.Name
	}
	return out
}

func TestSortEvents(t *testing.T) {
	may4 := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	may11 := time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{"page keeps input order", SortByPage, []string{"UFC 302", "UFC on ESPN", "UFC 301"}},
		{"date puts dateless last", SortByDate, []string{"UFC 301", "UFC on ESPN", "UFC 302"}},
		{"name is case-insensitive", SortByName, []string{"UFC 301", "UFC 302", "UFC on ESPN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []*event.Event{
				newEvent("UFC 302", time.Time{}),
				newEvent("UFC on ESPN", may11),
				newEvent("UFC 301", may4),
			}
			sortEvents(events, tt.order)

			got := names(events)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCompareByDate(t *testing.T) {
	dated := newEvent("a", time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC))
	dateless := newEvent("b", time.Time{})

	if !compareByDate(dated, dateless) {
		t.Error("dated event should sort before dateless")
	}
	if compareByDate(dateless, dated) {
		t.Error("dateless event should not sort before dated")
	}
	if compareByDate(dateless, dateless) {
		t.Error("two dateless events should compare equal")
	}
}
