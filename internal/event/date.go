package event

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern matches "<Month> <day>, <year>" such as "April 22, 2023" or "Jan 1, 2020".
var datePattern = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),\s*(\d{4})$`)

// DateFormatError is returned when a date heading cannot be parsed
type DateFormatError struct {
	Text string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("unparseable date %q (want \"Month d, yyyy\")", e.Text)
}

// ParseDate converts a schedule date heading into a date at midnight UTC.
// Month names are English only; full names and three-letter abbreviations
// are both accepted, case-insensitive.
func ParseDate(dateText string) (time.Time, error) {
	text := strings.TrimSpace(dateText)
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, &DateFormatError{Text: dateText}
	}

	month, ok := lookupMonth(m[1])
	if !ok {
		return time.Time{}, &DateFormatError{Text: dateText}
	}

	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes "February 30" into March; reject instead
	if t.Day() != day || t.Month() != month {
		return time.Time{}, &DateFormatError{Text: dateText}
	}
	return t, nil
}

func lookupMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] {
			return m, true
		}
	}
	// "Sept" shows up on some schedule pages
	if name == "sept" {
		return time.September, true
	}
	return 0, false
}
