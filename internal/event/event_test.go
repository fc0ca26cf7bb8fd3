package event

import (
	"errors"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	evt := NewEvent("UFC 210: Cormier vs. Johnson", "ufc")

	if evt.Name != "UFC 210: Cormier vs. Johnson" {
		t.Errorf("expected name 'UFC 210: Cormier vs. Johnson', got '%s'", evt.Name)
	}
	if evt.Source != "ufc" {
		t.Errorf("expected source 'ufc', got '%s'", evt.Source)
	}
	if evt.HasDate() {
		t.Error("new event should not have a date")
	}
	if len(evt.Fights) != 0 {
		t.Errorf("expected no fights, got %d", len(evt.Fights))
	}
}

func TestDescription_PreservesOrder(t *testing.T) {
	evt := NewEvent("UFC 1", "ufc")
	evt.AddFight("Fighter A vs B")
	evt.AddFight("Fighter C vs D")
	evt.AddFight("Fighter E vs F")

	want := "Fighter A vs B\nFighter C vs D\nFighter E vs F"
	if got := evt.Description(); got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}

func TestDescription_NoFights(t *testing.T) {
	evt := NewEvent("Bellator 300", "bellator")
	if got := evt.Description(); got != "" {
		t.Errorf("Description() = %q, want empty", got)
	}
}

func TestSetDate(t *testing.T) {
	evt := NewEvent("UFC 1", "ufc")

	if err := evt.SetDate("May 4, 2024"); err != nil {
		t.Fatalf("SetDate failed: %v", err)
	}
	want := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	if !evt.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", evt.Date, want)
	}

	// A bad heading leaves the existing date alone
	err := evt.SetDate("TBA")
	var dfe *DateFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected *DateFormatError, got %v", err)
	}
	if !evt.Date.Equal(want) {
		t.Errorf("Date changed after failed SetDate: %v", evt.Date)
	}
}
