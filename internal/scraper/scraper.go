package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
)

const (
	ScheduleURL = "https://www.mmafighting.com/schedule"
	UserAgent   = "mma-calendar/1.0 (github.com/pfrederiksen/mma-calendar)"
	Timeout     = 30 * time.Second

	// elementSelector picks date headings and links; order is document order
	elementSelector = "h3, a[href]"
)

// FetchError reports a failure to load one schedule page
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Scraper fetches schedule pages for one schedule host
type Scraper struct {
	client    *http.Client
	baseURL   string
	userAgent string
	retries   uint64
	interval  time.Duration
}

// Option configures a Scraper
type Option func(*Scraper)

// WithBaseURL sets the schedule root; the event type is appended as a path segment
func WithBaseURL(url string) Option {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout bounds each HTTP request
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithRetries sets how many times a transient failure is retried and the
// first backoff interval
func WithRetries(n uint64, initial time.Duration) Option {
	return func(s *Scraper) {
		s.retries = n
		s.interval = initial
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL:   ScheduleURL,
		userAgent: UserAgent,
		retries:   3,
		interval:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the schedule page for an event type such as "ufc" or "bellator"
func (s *Scraper) URL(eventType string) string {
	return s.baseURL + "/" + eventType
}

// FetchElements downloads the schedule page for eventType and returns its
// headings and links. Every failure is a *FetchError.
func (s *Scraper) FetchElements(ctx context.Context, eventType string) ([]Element, error) {
	url := s.URL(eventType)

	var elements []Element
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		elements, err = ExtractElements(resp.Body)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.interval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, s.retries), ctx)

	if err := backoff.Retry(operation, b); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return elements, nil
}

// FetchEvents fetches and parses the schedule for eventType
func (s *Scraper) FetchEvents(ctx context.Context, eventType string) (*ParseResult, error) {
	elements, err := s.FetchElements(ctx, eventType)
	if err != nil {
		return nil, err
	}
	return Parse(elements, eventType)
}

// ExtractElements reads an HTML document and returns its h3 headings and
// links in document order, with whitespace collapsed the way browsers render it
func ExtractElements(r io.Reader) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	elements := make([]Element, 0)
	doc.Find(elementSelector).Each(func(i int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		elements = append(elements, Element{
			Text:      normalizeSpace(sel.Text()),
			Tag:       tag,
			IsHeading: tag == "h3",
		})
	})

	return elements, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
