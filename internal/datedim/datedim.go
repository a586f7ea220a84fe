// Package datedim generates the calendar date dimension. The dimension is
// independent of message data: every day in the configured inclusive range
// gets exactly one row. Day-of-week numbering is 0=Sunday..6=Saturday;
// week_of_year uses ISO 8601 week numbering (time.Time.ISOWeek), so values
// never depend on platform locale.
package datedim

import (
	"fmt"
	"log"
	"time"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// Result holds the results of a date dimension build.
type Result struct {
	Days      int
	RowsAdded int
}

// Builder generates and persists the date dimension.
type Builder struct {
	db *warehouse.DB
}

// NewBuilder creates a new date dimension builder.
func NewBuilder(db *warehouse.DB) *Builder {
	return &Builder{db: db}
}

// Run generates the range and inserts missing rows. Because insertion
// ignores existing date_key values, expanding the range only adds days.
func (b *Builder) Run(start, end time.Time) (*Result, error) {
	dates, err := Generate(start, end)
	if err != nil {
		return nil, err
	}

	added, err := b.db.InsertDateRows(dates)
	if err != nil {
		return nil, err
	}

	log.Printf("Date dimension complete: %d days in range, %d rows added", len(dates), added)
	return &Result{Days: len(dates), RowsAdded: added}, nil
}

// Generate enumerates every calendar day in [start, end] inclusive.
func Generate(start, end time.Time) ([]warehouse.DateRow, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			end.Format(warehouse.DateLayout), start.Format(warehouse.DateLayout))
	}

	var dates []warehouse.DateRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, dayRow(d))
	}
	return dates, nil
}

func dayRow(d time.Time) warehouse.DateRow {
	_, isoWeek := d.ISOWeek()
	dow := int(d.Weekday()) // time.Weekday is already 0=Sunday..6=Saturday

	return warehouse.DateRow{
		DateKey:    warehouse.DateKey(d),
		FullDate:   d.Format(warehouse.DateLayout),
		Year:       d.Year(),
		Quarter:    (int(d.Month())-1)/3 + 1,
		Month:      int(d.Month()),
		MonthName:  d.Month().String(),
		WeekOfYear: isoWeek,
		DayOfMonth: d.Day(),
		DayOfWeek:  dow,
		DayName:    d.Weekday().String(),
		IsWeekend:  dow == 0 || dow == 6,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
