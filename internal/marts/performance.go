package marts

import (
	"log"
	"time"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// Performance category thresholds on content_effectiveness_score.
const (
	highPerformerScore   = 1000
	mediumPerformerScore = 100
)

// PerformanceResult holds the results of a performance mart build.
type PerformanceResult struct {
	Channels int
}

// PerformanceBuilder builds the channel performance mart.
type PerformanceBuilder struct {
	db *warehouse.DB
}

// NewPerformanceBuilder creates a channel performance mart builder.
func NewPerformanceBuilder(db *warehouse.DB) *PerformanceBuilder {
	return &PerformanceBuilder{db: db}
}

// Run joins the channel dimension with the daily and weekly activity rollups
// and replaces the performance mart. The asOf time anchors the
// posts-last-7-days window.
func (b *PerformanceBuilder) Run(asOf time.Time) (*PerformanceResult, error) {
	channels, err := b.db.GetChannels()
	if err != nil {
		return nil, err
	}
	daily, err := b.db.GetDailyActivity()
	if err != nil {
		return nil, err
	}
	weekly, err := b.db.GetWeeklyActivity()
	if err != nil {
		return nil, err
	}

	perf, err := BuildChannelPerformance(channels, daily, weekly, asOf)
	if err != nil {
		return nil, err
	}

	if err := b.db.ReplaceChannelPerformance(perf); err != nil {
		return nil, err
	}

	log.Printf("Performance mart complete: %d channels", len(perf))
	return &PerformanceResult{Channels: len(perf)}, nil
}

// BuildChannelPerformance computes the per-channel rollup from the dimension
// row and the externally supplied daily/weekly aggregates.
func BuildChannelPerformance(channels []warehouse.Channel, daily []warehouse.DailyActivity, weekly []warehouse.WeeklyActivity, asOf time.Time) ([]warehouse.ChannelPerformance, error) {
	last7 := make(map[int]int)
	cutoff := asOf.AddDate(0, 0, -7)
	for _, a := range daily {
		day, err := parseDay(a.Day)
		if err != nil {
			return nil, err
		}
		if !day.Before(cutoff) {
			last7[a.ChannelKey] += a.Posts
		}
	}

	weeklyPosts := make(map[int][]int)
	for _, a := range weekly {
		weeklyPosts[a.ChannelKey] = append(weeklyPosts[a.ChannelKey], a.Posts)
	}

	perf := make([]warehouse.ChannelPerformance, 0, len(channels))
	for _, c := range channels {
		score := round2(c.AvgViews * (1 + c.ImagePercentage/100))
		p := warehouse.ChannelPerformance{
			ChannelKey:                c.ChannelKey,
			ChannelName:               c.ChannelName,
			ChannelType:               c.ChannelType,
			TotalPosts:                c.TotalPosts,
			AvgViews:                  c.AvgViews,
			ImagePercentage:           c.ImagePercentage,
			ActivityStatus:            c.ActivityStatus,
			PostsLast7Days:            last7[c.ChannelKey],
			WeeklyGrowthPercentage:    WeeklyGrowth(weeklyPosts[c.ChannelKey]),
			ContentEffectivenessScore: score,
			PerformanceCategory:       performanceCategory(score),
		}
		p.ImprovementRecommendation = Recommend(&p)
		perf = append(perf, p)
	}
	return perf, nil
}

// WeeklyGrowth computes ((max - min) / min) * 100 over all observed weekly
// bucket counts. Fewer than two buckets, or a zero minimum, yields 0. This
// deliberately measures spread across weeks rather than chronological
// period-over-period growth.
func WeeklyGrowth(weeklyPosts []int) float64 {
	if len(weeklyPosts) < 2 {
		return 0
	}
	min, max := weeklyPosts[0], weeklyPosts[0]
	for _, n := range weeklyPosts[1:] {
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	if min == 0 {
		return 0
	}
	return round2(float64(max-min) / float64(min) * 100)
}

func performanceCategory(score float64) string {
	switch {
	case score > highPerformerScore:
		return "High Performer"
	case score > mediumPerformerScore:
		return "Medium Performer"
	default:
		return "Low Performer"
	}
}

// Recommend picks a single improvement recommendation by the first matching
// rule, in fixed priority order.
func Recommend(p *warehouse.ChannelPerformance) string {
	switch {
	case p.ImagePercentage < 30:
		return "Increase visual content"
	case p.PostsLast7Days < 5:
		return "Increase posting frequency"
	case p.AvgViews < 50:
		return "Improve content quality"
	default:
		return "Maintain current strategy"
	}
}
