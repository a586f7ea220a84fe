package warehouse

import "time"

// RawMessage is a scraped message document as it landed, before any cleaning.
// MessageDate is kept verbatim; parsing happens in the staging transform.
type RawMessage struct {
	ID                int64
	MessageID         int64
	ChannelName       string
	ChannelUsername   *string
	ChannelTitle      *string
	MessageDate       *string
	MessageText       *string
	HasMedia          bool
	ImagePath         *string
	Views             int
	Forwards          int
	ScrapedAt         *string
	PotentialProducts []string
	LoadedAt          *string
}

// StagedMessage is the cleaned, flagged representation of a raw message.
type StagedMessage struct {
	MessageID          int64
	ChannelName        string
	ChannelUsername    *string
	ChannelTitle       *string
	MessageDate        time.Time
	CleanedMessageText string
	MessageLength      int
	HasMedia           bool
	HasImage           bool
	Views              int
	Forwards           int
	IsEmptyMessage     bool
	IsFutureDate       bool
	HasNegativeViews   bool
	DataQualityStatus  string // "valid" or "needs_review"
	PotentialProducts  []string
}

// DateRow is one calendar day in the date dimension.
type DateRow struct {
	DateKey    int // YYYYMMDD
	FullDate   string
	Year       int
	Quarter    int
	Month      int
	MonthName  string
	WeekOfYear int
	DayOfMonth int
	DayOfWeek  int // 0=Sunday .. 6=Saturday
	DayName    string
	IsWeekend  bool
}

// Channel is one row of the channel dimension.
type Channel struct {
	ChannelKey      int
	ChannelName     string
	ChannelUsername *string
	ChannelTitle    *string
	ChannelType     string
	FirstPostDate   time.Time
	LastPostDate    time.Time
	TotalPosts      int
	AvgViews        float64
	AvgForwards     float64
	PostsWithMedia  int
	PostsWithImage  int
	MediaPercentage float64
	ImagePercentage float64
	ActivityStatus  string // "active", "moderate" or "inactive"
}

// MessageFact is one row of the message fact table. Both foreign keys are
// guaranteed to resolve; messages that fail either join never reach it.
type MessageFact struct {
	MessageID         int64
	ChannelKey        int
	DateKey           int
	MessageText       string
	MessageLength     int
	ViewCount         int
	ForwardCount      int
	HasImage          bool
	EngagementScore   int
	PotentialProducts []string
}

// ProductSummary is one row of the product mention mart, aggregated per
// normalized product name.
type ProductSummary struct {
	ProductName     string
	ProductCategory string
	Strength        *string
	MentionCount    int
	ChannelCount    int
	TotalViews      int
	TotalForwards   int
	AvgViews        float64
	AvgForwards     float64
	FirstMentioned  string // YYYY-MM-DD
	LastMentioned   string // YYYY-MM-DD
	PopularityRank  int
	ViewsRank       int
}

// ChannelPerformance is one row of the channel performance mart.
type ChannelPerformance struct {
	ChannelKey                int
	ChannelName               string
	ChannelType               string
	TotalPosts                int
	AvgViews                  float64
	ImagePercentage           float64
	ActivityStatus            string
	PostsLast7Days            int
	WeeklyGrowthPercentage    float64
	ContentEffectivenessScore float64
	PerformanceCategory       string
	ImprovementRecommendation string
}

// DailyActivity is a per-channel, per-day rollup of the fact table.
type DailyActivity struct {
	ChannelKey int
	Day        string // YYYY-MM-DD
	Posts      int
	TotalViews int
}

// WeeklyActivity is a per-channel, per-ISO-week rollup of the fact table.
type WeeklyActivity struct {
	ChannelKey int
	Week       string // e.g. "2024-W05"
	Posts      int
}

// BuildRun records one pipeline build with its per-stage counts.
type BuildRun struct {
	RunID            string
	AsOf             string
	Status           string
	RawCount         int
	StagedCount      int
	FlaggedCount     int
	NullDateDropped  int
	FutureDropped    int
	DateCount        int
	ChannelCount     int
	FactCount        int
	DroppedNoChannel int
	DroppedNoDate    int
	ProductCount     int
	PerformanceCount int
	StartedAt        *string
	FinishedAt       *string
}

// Stats contains aggregate warehouse statistics.
type Stats struct {
	RawMessages     int
	StagedMessages  int
	NeedsReview     int
	Dates           int
	Channels        int
	Facts           int
	Products        int
	PerformanceRows int
	BuildRuns       int
	LastBuild       *string
}
