package warehouse

import (
	"fmt"
	"time"
)

const (
	// DateTimeLayout is the canonical timestamp format stored in the warehouse.
	DateTimeLayout = "2006-01-02 15:04:05"
	// DateLayout is the canonical calendar-day format.
	DateLayout = "2006-01-02"
)

// messageDateLayouts are the timestamp formats accepted from raw documents,
// tried in order.
var messageDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateTimeLayout,
	DateLayout,
}

// ParseMessageDate parses a raw message timestamp. Scraped batches carry a
// mix of RFC3339 and space-separated timestamps depending on scraper version.
func ParseMessageDate(s string) (time.Time, error) {
	for _, layout := range messageDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized message date %q", s)
}

// DateKey returns the YYYYMMDD integer key for a timestamp's calendar day.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ISOWeekLabel returns a stable per-week bucket label, e.g. "2024-W05",
// using ISO 8601 week numbering.
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
