package warehouse

import (
	"testing"
	"time"
)

func TestParseMessageDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-15T10:30:00Z", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-06-15T10:30:00", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-06-15 10:30:00", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseMessageDate(c.in)
		if err != nil {
			t.Errorf("ParseMessageDate(%q): unexpected error: %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseMessageDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseMessageDate("not a date"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestDateKey(t *testing.T) {
	got := DateKey(time.Date(2024, 6, 5, 23, 59, 0, 0, time.UTC))
	if got != 20240605 {
		t.Errorf("DateKey = %d, want 20240605", got)
	}
}

func TestISOWeekLabel(t *testing.T) {
	// 2024-01-01 is a Monday, ISO week 1 of 2024.
	if got := ISOWeekLabel(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); got != "2024-W01" {
		t.Errorf("ISOWeekLabel = %q, want 2024-W01", got)
	}
	// 2023-01-01 is a Sunday, still ISO week 52 of 2022.
	if got := ISOWeekLabel(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)); got != "2022-W52" {
		t.Errorf("ISOWeekLabel = %q, want 2022-W52", got)
	}
}
