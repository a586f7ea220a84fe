// Package staging cleans and validates raw messages into the staging table.
// Every raw record with a parsable message_date yields exactly one staged row
// unless the date lies in the future, in which case the row is excluded
// entirely. Empty text and negative view counts are flagged, not excluded.
package staging

import (
	"log"
	"strings"
	"time"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

const (
	StatusValid       = "valid"
	StatusNeedsReview = "needs_review"
)

// Result holds the results of a staging run.
type Result struct {
	RawCount        int
	Staged          int
	Flagged         int
	NullDateDropped int
	FutureDropped   int
}

// Stager runs the staging transform.
type Stager struct {
	db *warehouse.DB
}

// NewStager creates a new staging transform.
func NewStager(db *warehouse.DB) *Stager {
	return &Stager{db: db}
}

// Run reads the raw landing table, transforms it, and replaces the staging
// table. The asOf time anchors the future-date check so builds are
// reproducible.
func (s *Stager) Run(asOf time.Time) (*Result, error) {
	raw, err := s.db.GetRawMessages()
	if err != nil {
		return nil, err
	}

	staged, r := Transform(raw, asOf)
	r.RawCount = len(raw)

	if err := s.db.ReplaceStagedMessages(staged); err != nil {
		return nil, err
	}

	log.Printf("Staging complete: %d raw, %d staged (%d flagged), %d null dates, %d future-dated excluded",
		r.RawCount, r.Staged, r.Flagged, r.NullDateDropped, r.FutureDropped)
	return r, nil
}

// Transform applies the staging rules to a raw snapshot. Records without a
// parsable message_date are dropped. Future-dated rows are flagged and then
// hard-excluded: the flag never survives into the output, it exists for the
// audit counts. Other quality flags mark rows needs_review without removal.
func Transform(raw []warehouse.RawMessage, asOf time.Time) ([]warehouse.StagedMessage, *Result) {
	r := &Result{}
	staged := make([]warehouse.StagedMessage, 0, len(raw))

	for i := range raw {
		m := &raw[i]
		if m.MessageDate == nil || *m.MessageDate == "" {
			r.NullDateDropped++
			continue
		}
		date, err := warehouse.ParseMessageDate(*m.MessageDate)
		if err != nil {
			r.NullDateDropped++
			continue
		}

		text := ""
		if m.MessageText != nil {
			text = *m.MessageText
		}
		cleaned := strings.TrimSpace(text)

		row := warehouse.StagedMessage{
			MessageID:          m.MessageID,
			ChannelName:        m.ChannelName,
			ChannelUsername:    m.ChannelUsername,
			ChannelTitle:       m.ChannelTitle,
			MessageDate:        date,
			CleanedMessageText: cleaned,
			MessageLength:      len(cleaned),
			HasMedia:           m.HasMedia,
			HasImage:           m.ImagePath != nil && *m.ImagePath != "",
			Views:              m.Views,
			Forwards:           m.Forwards,
			IsEmptyMessage:     cleaned == "",
			IsFutureDate:       date.After(asOf),
			HasNegativeViews:   m.Views < 0,
			PotentialProducts:  m.PotentialProducts,
		}

		if row.IsEmptyMessage || row.IsFutureDate || row.HasNegativeViews {
			row.DataQualityStatus = StatusNeedsReview
		} else {
			row.DataQualityStatus = StatusValid
		}

		if row.IsFutureDate {
			r.FutureDropped++
			continue
		}

		if row.DataQualityStatus == StatusNeedsReview {
			r.Flagged++
		}
		staged = append(staged, row)
	}

	r.Staged = len(staged)
	return staged, r
}
