package event

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		dateText  string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantErr   bool
	}{
		{
			name:      "Full month name",
			dateText:  "April 22, 2023",
			wantYear:  2023,
			wantMonth: time.April,
			wantDay:   22,
		},
		{
			name:      "Full month single digit day",
			dateText:  "May 4, 2024",
			wantYear:  2024,
			wantMonth: time.May,
			wantDay:   4,
		},
		{
			name:      "Abbreviated month",
			dateText:  "Jan 1, 2020",
			wantYear:  2020,
			wantMonth: time.January,
			wantDay:   1,
		},
		{
			name:      "Abbreviated month with period",
			dateText:  "Dec. 16, 2023",
			wantYear:  2023,
			wantMonth: time.December,
			wantDay:   16,
		},
		{
			name:      "Sept abbreviation",
			dateText:  "Sept 9, 2023",
			wantYear:  2023,
			wantMonth: time.September,
			wantDay:   9,
		},
		{
			name:      "Lowercase month",
			dateText:  "march 2, 2024",
			wantYear:  2024,
			wantMonth: time.March,
			wantDay:   2,
		},
		{
			name:      "Surrounding whitespace",
			dateText:  "  July 29, 2023\n",
			wantYear:  2023,
			wantMonth: time.July,
			wantDay:   29,
		},
		{
			name:      "Leap day",
			dateText:  "February 29, 2024",
			wantYear:  2024,
			wantMonth: time.February,
			wantDay:   29,
		},
		{
			name:     "Empty string",
			dateText: "",
			wantErr:  true,
		},
		{
			name:     "Missing comma",
			dateText: "April 22 2023",
			wantErr:  true,
		},
		{
			name:     "Two digit year",
			dateText: "April 22, 23",
			wantErr:  true,
		},
		{
			name:     "Unknown month",
			dateText: "Smarch 13, 2024",
			wantErr:  true,
		},
		{
			name:     "Non-English month",
			dateText: "Mai 4, 2024",
			wantErr:  true,
		},
		{
			name:     "Impossible day",
			dateText: "February 30, 2024",
			wantErr:  true,
		},
		{
			name:     "Numeric date",
			dateText: "04/22/2023",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.dateText)

			if tt.wantErr {
				var dfe *DateFormatError
				if !errors.As(err, &dfe) {
					t.Fatalf("ParseDate(%q) error = %v, want *DateFormatError", tt.dateText, err)
				}
				if !got.IsZero() {
					t.Errorf("ParseDate(%q) = %v, want zero time on error", tt.dateText, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.dateText, err)
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ParseDate(%q) = %s, want %04d-%02d-%02d",
					tt.dateText, got.Format("2006-01-02"), tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
				t.Errorf("ParseDate(%q) = %v, want midnight UTC", tt.dateText, got)
			}
		})
	}
}

func TestDateFormatError_Message(t *testing.T) {
	_, err := ParseDate("TBD")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `"TBD"`) {
		t.Errorf("error message should quote the input, got %q", err.Error())
	}
}
