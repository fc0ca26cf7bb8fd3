package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/mma-calendar/internal/calendar"
	"github.com/pfrederiksen/mma-calendar/internal/event"
	"github.com/pfrederiksen/mma-calendar/internal/reconcile"
	"github.com/pfrederiksen/mma-calendar/internal/storage"
)

func main() {
	dir, err := os.MkdirTemp("", "mma-calendar-test")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating temp dir: %v\n", err)
		os.Exit(1)
	}

	evt := event.NewEvent("UFC 301: Pantoja vs. Erceg", "ufc")
	if err := evt.SetDate("May 4, 2024"); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		os.Exit(1)
	}
	evt.AddFight("Alexandre Pantoja vs. Steve Erceg")
	evt.AddFight("Jose Aldo vs. Jonathan Martinez")

	path := filepath.Join(dir, "test-mma-event.ics")
	store := calendar.NewICSStore([]calendar.Source{
		{ID: 1, Name: "MMA Events", Path: path, Primary: true, Visible: true},
	})

	ids, err := storage.New(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating id map: %v\n", err)
		os.Exit(1)
	}

	rec, err := reconcile.New(store, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating reconciler: %v\n", err)
		os.Exit(1)
	}

	if _, err := rec.Reconcile(context.Background(), evt, 1); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing event: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading calendar: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", path)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(string(data))
}
