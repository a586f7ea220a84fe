// Package channels builds the channel dimension from valid staged messages:
// per-channel aggregates, keyword classification, activity status, and
// surrogate key assignment.
package channels

import (
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dawitkb/medwarehouse/internal/config"
	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// DefaultType is assigned when no classification rule matches.
const DefaultType = "Other"

// Activity status thresholds relative to the build's asOf time.
const (
	activeWindow   = 7 * 24 * time.Hour
	moderateWindow = 30 * 24 * time.Hour
)

// Result holds the results of a channel dimension build.
type Result struct {
	Channels int
	Messages int
}

// Builder builds the channel dimension.
type Builder struct {
	db    *warehouse.DB
	rules []config.CategoryRule
}

// NewBuilder creates a channel dimension builder with the given
// classification rules (evaluated in order, first match wins).
func NewBuilder(db *warehouse.DB, rules []config.CategoryRule) *Builder {
	if len(rules) == 0 {
		rules = config.DefaultClassification()
	}
	return &Builder{db: db, rules: rules}
}

// Run reads valid staged messages, builds the dimension, and replaces it.
// The asOf time anchors activity status; rebuilding at a different instant
// may reclassify activity but never changes keys or aggregates.
func (b *Builder) Run(asOf time.Time) (*Result, error) {
	staged, err := b.db.GetValidStagedMessages()
	if err != nil {
		return nil, err
	}

	channels := Build(staged, b.rules, asOf)

	if err := b.db.ReplaceChannels(channels); err != nil {
		return nil, err
	}

	log.Printf("Channel dimension complete: %d channels from %d valid messages",
		len(channels), len(staged))
	return &Result{Channels: len(channels), Messages: len(staged)}, nil
}

// stats accumulates per-channel aggregates during the grouping pass.
type stats struct {
	name           string
	username       *string
	title          *string
	firstPost      time.Time
	lastPost       time.Time
	totalPosts     int
	sumViews       int
	sumForwards    int
	postsWithMedia int
	postsWithImage int
}

// Build groups valid staged messages by channel_name and derives the full
// dimension. channel_key is a dense 1..N sequence assigned by total_posts
// descending; ties are broken by channel_name ascending so reordering the
// input never changes key assignment.
func Build(staged []warehouse.StagedMessage, rules []config.CategoryRule, asOf time.Time) []warehouse.Channel {
	groups := make(map[string]*stats)
	var order []string

	for i := range staged {
		m := &staged[i]
		g, ok := groups[m.ChannelName]
		if !ok {
			// username and title are functionally dependent on channel_name;
			// first seen wins.
			g = &stats{name: m.ChannelName, username: m.ChannelUsername, title: m.ChannelTitle,
				firstPost: m.MessageDate, lastPost: m.MessageDate}
			groups[m.ChannelName] = g
			order = append(order, m.ChannelName)
		}

		if m.MessageDate.Before(g.firstPost) {
			g.firstPost = m.MessageDate
		}
		if m.MessageDate.After(g.lastPost) {
			g.lastPost = m.MessageDate
		}
		g.totalPosts++
		g.sumViews += m.Views
		g.sumForwards += m.Forwards
		if m.HasMedia {
			g.postsWithMedia++
		}
		if m.HasImage {
			g.postsWithImage++
		}
	}

	channels := make([]warehouse.Channel, 0, len(order))
	for _, name := range order {
		g := groups[name]
		channels = append(channels, warehouse.Channel{
			ChannelName:     g.name,
			ChannelUsername: g.username,
			ChannelTitle:    g.title,
			ChannelType:     Classify(g.name, rules),
			FirstPostDate:   g.firstPost,
			LastPostDate:    g.lastPost,
			TotalPosts:      g.totalPosts,
			AvgViews:        safeAvg(g.sumViews, g.totalPosts),
			AvgForwards:     safeAvg(g.sumForwards, g.totalPosts),
			PostsWithMedia:  g.postsWithMedia,
			PostsWithImage:  g.postsWithImage,
			MediaPercentage: safePercent(g.postsWithMedia, g.totalPosts),
			ImagePercentage: safePercent(g.postsWithImage, g.totalPosts),
			ActivityStatus:  ActivityStatus(g.lastPost, asOf),
		})
	}

	assignKeys(channels)
	return channels
}

// Classify returns the first matching category for a channel name, checking
// each rule's keywords as lower-cased substrings in rule order.
func Classify(channelName string, rules []config.CategoryRule) string {
	lower := strings.ToLower(channelName)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return DefaultType
}

// ActivityStatus classifies recency of the last post relative to asOf.
func ActivityStatus(lastPost, asOf time.Time) string {
	age := asOf.Sub(lastPost)
	switch {
	case age <= activeWindow:
		return "active"
	case age <= moderateWindow:
		return "moderate"
	default:
		return "inactive"
	}
}

// assignKeys sorts by total_posts descending (channel_name ascending on ties)
// and enumerates 1..N.
func assignKeys(channels []warehouse.Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		if channels[i].TotalPosts != channels[j].TotalPosts {
			return channels[i].TotalPosts > channels[j].TotalPosts
		}
		return channels[i].ChannelName < channels[j].ChannelName
	})
	for i := range channels {
		channels[i].ChannelKey = i + 1
	}
}

func safeAvg(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

func safePercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) * 100 / float64(total))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
