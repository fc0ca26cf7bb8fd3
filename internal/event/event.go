package event

import (
	"strings"
	"time"
)

// Event represents one scheduled MMA card scraped from the schedule page
type Event struct {
	Name   string    `json:"name"`
	Source string    `json:"source,omitempty"` // event type the card was scraped from (ufc, bellator)
	Date   time.Time `json:"date,omitempty"`   // zero until a date heading is seen
	Fights []string  `json:"fights"`
}

// NewEvent creates an Event with no date and no fights
func NewEvent(name, source string) *Event {
	return &Event{
		Name:   name,
		Source: source,
		Fights: make([]string, 0),
	}
}

// HasDate reports whether a date was parsed for the event.
// Events without a date are never written to a calendar.
func (e *Event) HasDate() bool {
	return !e.Date.IsZero()
}

// AddFight appends a fight line, keeping source order
func (e *Event) AddFight(fight string) {
	e.Fights = append(e.Fights, fight)
}

// SetDate parses dateText and stores the result. On failure the event
// keeps whatever date it had and the *DateFormatError is returned.
func (e *Event) SetDate(dateText string) error {
	d, err := ParseDate(dateText)
	if err != nil {
		return err
	}
	e.Date = d
	return nil
}

// Description is the calendar entry body: one fight per line
func (e *Event) Description() string {
	return strings.Join(e.Fights, "\n")
}
