package marts

import (
	"testing"
	"time"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

var asOf = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func TestWeeklyGrowth(t *testing.T) {
	cases := []struct {
		posts []int
		want  float64
	}{
		{nil, 0},
		{[]int{10}, 0},
		{[]int{10, 15}, 50},
		{[]int{15, 10}, 50},
		{[]int{5, 20, 10}, 300},
		{[]int{0, 10}, 0},
		{[]int{7, 7}, 0},
	}
	for _, c := range cases {
		if got := WeeklyGrowth(c.posts); got != c.want {
			t.Errorf("WeeklyGrowth(%v) = %v, want %v", c.posts, got, c.want)
		}
	}
}

func TestPerformanceCategory(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{1500, "High Performer"},
		{1000, "Medium Performer"},
		{500, "Medium Performer"},
		{100, "Low Performer"},
		{0, "Low Performer"},
	}
	for _, c := range cases {
		if got := performanceCategory(c.score); got != c.want {
			t.Errorf("performanceCategory(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		perf warehouse.ChannelPerformance
		want string
	}{
		{warehouse.ChannelPerformance{ImagePercentage: 10, PostsLast7Days: 1, AvgViews: 10}, "Increase visual content"},
		{warehouse.ChannelPerformance{ImagePercentage: 50, PostsLast7Days: 2, AvgViews: 10}, "Increase posting frequency"},
		{warehouse.ChannelPerformance{ImagePercentage: 50, PostsLast7Days: 10, AvgViews: 10}, "Improve content quality"},
		{warehouse.ChannelPerformance{ImagePercentage: 50, PostsLast7Days: 10, AvgViews: 200}, "Maintain current strategy"},
	}
	for _, c := range cases {
		if got := Recommend(&c.perf); got != c.want {
			t.Errorf("Recommend(%+v) = %q, want %q", c.perf, got, c.want)
		}
	}
}

func TestBuildChannelPerformance(t *testing.T) {
	channels := []warehouse.Channel{{
		ChannelKey: 1, ChannelName: "pharma", ChannelType: "Pharmaceutical",
		TotalPosts: 10, AvgViews: 200, ImagePercentage: 50, ActivityStatus: "active",
	}}
	daily := []warehouse.DailyActivity{
		{ChannelKey: 1, Day: "2024-06-28", Posts: 3},
		{ChannelKey: 1, Day: "2024-06-24", Posts: 2},
		{ChannelKey: 1, Day: "2024-06-10", Posts: 5}, // outside the 7-day window
	}
	weekly := []warehouse.WeeklyActivity{
		{ChannelKey: 1, Week: "2024-W24", Posts: 5},
		{ChannelKey: 1, Week: "2024-W26", Posts: 5},
	}

	perf, err := BuildChannelPerformance(channels, daily, weekly, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(perf) != 1 {
		t.Fatalf("expected 1 row, got %d", len(perf))
	}
	p := perf[0]
	if p.PostsLast7Days != 5 {
		t.Errorf("expected 5 posts in last 7 days, got %d", p.PostsLast7Days)
	}
	if p.ContentEffectivenessScore != 300 {
		t.Errorf("expected score 300, got %v", p.ContentEffectivenessScore)
	}
	if p.PerformanceCategory != "Medium Performer" {
		t.Errorf("expected Medium Performer, got %q", p.PerformanceCategory)
	}
	if p.WeeklyGrowthPercentage != 0 {
		t.Errorf("expected 0 growth on equal weeks, got %v", p.WeeklyGrowthPercentage)
	}
	if p.ImprovementRecommendation != "Maintain current strategy" {
		t.Errorf("unexpected recommendation: %q", p.ImprovementRecommendation)
	}
}

func TestBuildChannelPerformanceNoActivity(t *testing.T) {
	channels := []warehouse.Channel{{ChannelKey: 1, ChannelName: "quiet", ChannelType: "Other"}}
	perf, err := BuildChannelPerformance(channels, nil, nil, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := perf[0]
	if p.PostsLast7Days != 0 || p.WeeklyGrowthPercentage != 0 || p.ContentEffectivenessScore != 0 {
		t.Errorf("expected zeroed metrics, got %+v", p)
	}
	if p.PerformanceCategory != "Low Performer" {
		t.Errorf("expected Low Performer, got %q", p.PerformanceCategory)
	}
	if p.ImprovementRecommendation != "Increase visual content" {
		t.Errorf("unexpected recommendation: %q", p.ImprovementRecommendation)
	}
}

func TestBuildChannelPerformanceBadDay(t *testing.T) {
	channels := []warehouse.Channel{{ChannelKey: 1, ChannelName: "pharma"}}
	daily := []warehouse.DailyActivity{{ChannelKey: 1, Day: "not a day", Posts: 1}}
	if _, err := BuildChannelPerformance(channels, daily, nil, asOf); err == nil {
		t.Error("expected error for malformed day")
	}
}
