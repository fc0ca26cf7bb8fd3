package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/mma-calendar/internal/event"
	"github.com/pfrederiksen/mma-calendar/internal/logger"
)

// Terminator is the page text that follows the last scheduled event
const Terminator = "MMA Fighting"

// titleMarkers identify an event title; any element containing one starts a new event
var titleMarkers = []string{"UFC ", "Bellator ", "Bellator:"}

// Element is one schedule page node in document order: a date heading or a link
type Element struct {
	Text      string `json:"text"`
	Tag       string `json:"tag"`
	IsHeading bool   `json:"is_heading"`
}

// StructuralError reports a date or fight line with no event to attach it to.
// It is fatal to the parse pass.
type StructuralError struct {
	Line string
	Kind string // "fight" or "date"
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s line %q has no event to attach to", e.Kind, e.Line)
}

// ParseResult is the outcome of one parse pass
type ParseResult struct {
	Source     string         `json:"source"`
	Events     []*event.Event `json:"events"`
	Terminated bool           `json:"terminated"` // the terminator text was reached
	DateErrors []error        `json:"-"`
}

type parseState int

const (
	stateIdle parseState = iota
	stateLoadingFights
	stateTerminal
)

// Parser walks schedule elements one at a time.
//
// It starts idle and ignores everything until the first event title.
// While loading fights, headings set the current event's date and any other
// element is a fight on the current event. The terminator ends the pass;
// nothing is inspected after it.
type Parser struct {
	source  string
	state   parseState
	events  []*event.Event
	current *event.Event
	result  ParseResult
}

// NewParser creates an idle parser. source is recorded on each event.
func NewParser(source string) *Parser {
	return &Parser{
		source: source,
		state:  stateIdle,
		events: make([]*event.Event, 0),
	}
}

// IsTitle reports whether text names an event
func IsTitle(text string) bool {
	for _, marker := range titleMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Feed classifies one element and applies it. done is true once the
// terminator has been seen; later calls are no-ops.
func (p *Parser) Feed(el Element) (done bool, err error) {
	if p.state == stateTerminal {
		return true, nil
	}

	// Title first: an element matching both title and terminator is a title
	if IsTitle(el.Text) {
		p.StartEvent(el.Text)
		return false, nil
	}

	if p.state != stateLoadingFights {
		return false, nil
	}

	switch {
	case strings.Contains(el.Text, Terminator):
		p.state = stateTerminal
		p.current = nil
		p.result.Terminated = true
		return true, nil
	case el.IsHeading:
		err := p.AddDate(strings.TrimSpace(el.Text))
		var dfe *event.DateFormatError
		if errors.As(err, &dfe) {
			p.result.DateErrors = append(p.result.DateErrors, err)
			logger.Warn("Dropping unparseable date heading", logger.Fields{
				"source": p.source,
				"event":  p.current.Name,
				"text":   el.Text,
			})
			return false, nil
		}
		return false, err
	default:
		return false, p.AddFight(el.Text)
	}
}

// StartEvent finalizes the current event and begins a new one
func (p *Parser) StartEvent(name string) {
	evt := event.NewEvent(name, p.source)
	p.events = append(p.events, evt)
	p.current = evt
	p.state = stateLoadingFights
}

// AddFight appends a fight to the current event
func (p *Parser) AddFight(text string) error {
	if p.current == nil {
		return &StructuralError{Line: text, Kind: "fight"}
	}
	p.current.AddFight(text)
	return nil
}

// AddDate sets the current event's date. A *event.DateFormatError leaves the
// event dateless.
func (p *Parser) AddDate(text string) error {
	if p.current == nil {
		return &StructuralError{Line: text, Kind: "date"}
	}
	return p.current.SetDate(text)
}

// Result returns the events parsed so far
func (p *Parser) Result() *ParseResult {
	res := p.result
	res.Source = p.source
	res.Events = p.events
	return &res
}

// Parse runs a full pass over elements. A StructuralError aborts the pass
// and no events are returned.
func Parse(elements []Element, source string) (*ParseResult, error) {
	p := NewParser(source)
	for _, el := range elements {
		done, err := p.Feed(el)
		if err != nil {
			return nil, fmt.Errorf("parsing %s schedule: %w", source, err)
		}
		if done {
			break
		}
	}
	return p.Result(), nil
}
