// Package facts builds the message fact table by resolving each valid staged
// message against the channel and date dimensions. Messages whose channel or
// calendar day has no dimension row are dropped from the fact table; the
// drops are counted and surfaced as build warnings, not errors.
package facts

import (
	"log"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// Result holds the results of a fact build.
type Result struct {
	Facts            int
	DroppedNoChannel int
	DroppedNoDate    int
}

// Builder builds the message fact table.
type Builder struct {
	db *warehouse.DB
}

// NewBuilder creates a new fact table builder.
func NewBuilder(db *warehouse.DB) *Builder {
	return &Builder{db: db}
}

// Run reads valid staged messages and both dimensions, resolves foreign
// keys, and replaces the fact table.
func (b *Builder) Run() (*Result, error) {
	staged, err := b.db.GetValidStagedMessages()
	if err != nil {
		return nil, err
	}
	channels, err := b.db.GetChannels()
	if err != nil {
		return nil, err
	}
	dateKeys, err := b.db.GetDateKeys()
	if err != nil {
		return nil, err
	}

	facts, r := Build(staged, channels, dateKeys)

	if err := b.db.ReplaceFacts(facts); err != nil {
		return nil, err
	}

	if r.DroppedNoChannel > 0 || r.DroppedNoDate > 0 {
		log.Printf("WARNING: dropped %d messages without a channel key and %d outside the date dimension",
			r.DroppedNoChannel, r.DroppedNoDate)
	}
	log.Printf("Fact table complete: %d rows", r.Facts)
	return r, nil
}

// Build resolves each staged message against the dimensions. Rows failing
// either lookup are excluded (inner-join semantics expressed as filters).
func Build(staged []warehouse.StagedMessage, channels []warehouse.Channel, dateKeys map[int]bool) ([]warehouse.MessageFact, *Result) {
	keyByChannel := make(map[string]int, len(channels))
	for _, c := range channels {
		keyByChannel[c.ChannelName] = c.ChannelKey
	}

	r := &Result{}
	facts := make([]warehouse.MessageFact, 0, len(staged))
	for i := range staged {
		m := &staged[i]

		channelKey, ok := keyByChannel[m.ChannelName]
		if !ok {
			r.DroppedNoChannel++
			continue
		}
		dateKey := warehouse.DateKey(m.MessageDate)
		if !dateKeys[dateKey] {
			r.DroppedNoDate++
			continue
		}

		facts = append(facts, warehouse.MessageFact{
			MessageID:         m.MessageID,
			ChannelKey:        channelKey,
			DateKey:           dateKey,
			MessageText:       m.CleanedMessageText,
			MessageLength:     m.MessageLength,
			ViewCount:         m.Views,
			ForwardCount:      m.Forwards,
			HasImage:          m.HasImage,
			EngagementScore:   EngagementScore(m.Views, m.Forwards),
			PotentialProducts: m.PotentialProducts,
		})
	}

	r.Facts = len(facts)
	return facts, r
}

// EngagementScore weights forwards double since a forward implies an active
// reader, whereas a view may be passive.
func EngagementScore(views, forwards int) int {
	return views + 2*forwards
}
