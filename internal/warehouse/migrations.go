package warehouse

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial star schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS raw_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id INTEGER NOT NULL,
    channel_name TEXT NOT NULL,
    channel_username TEXT,
    channel_title TEXT,
    message_date TEXT,
    message_text TEXT,
    has_media INTEGER DEFAULT 0,
    image_path TEXT,
    views INTEGER DEFAULT 0,
    forwards INTEGER DEFAULT 0,
    scraped_at TEXT,
    potential_products TEXT,
    loaded_at TEXT DEFAULT (datetime('now')),
    UNIQUE(message_id, channel_name)
);

CREATE TABLE IF NOT EXISTS stg_messages (
    message_id INTEGER NOT NULL,
    channel_name TEXT NOT NULL,
    channel_username TEXT,
    channel_title TEXT,
    message_date TEXT NOT NULL,
    cleaned_message_text TEXT NOT NULL,
    message_length INTEGER NOT NULL,
    has_media INTEGER NOT NULL,
    has_image INTEGER NOT NULL,
    views INTEGER NOT NULL,
    forwards INTEGER NOT NULL,
    is_empty_message INTEGER NOT NULL,
    is_future_date INTEGER NOT NULL,
    has_negative_views INTEGER NOT NULL,
    data_quality_status TEXT NOT NULL CHECK(data_quality_status IN ('valid', 'needs_review')),
    potential_products TEXT,
    PRIMARY KEY (message_id, channel_name)
);

CREATE TABLE IF NOT EXISTS dim_dates (
    date_key INTEGER PRIMARY KEY,
    full_date TEXT UNIQUE NOT NULL,
    year INTEGER NOT NULL,
    quarter INTEGER NOT NULL,
    month INTEGER NOT NULL,
    month_name TEXT NOT NULL,
    week_of_year INTEGER NOT NULL,
    day_of_month INTEGER NOT NULL,
    day_of_week INTEGER NOT NULL,
    day_name TEXT NOT NULL,
    is_weekend INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_channels (
    channel_key INTEGER PRIMARY KEY,
    channel_name TEXT UNIQUE NOT NULL,
    channel_username TEXT,
    channel_title TEXT,
    channel_type TEXT NOT NULL,
    first_post_date TEXT NOT NULL,
    last_post_date TEXT NOT NULL,
    total_posts INTEGER NOT NULL,
    avg_views REAL NOT NULL,
    avg_forwards REAL NOT NULL,
    posts_with_media INTEGER NOT NULL,
    posts_with_image INTEGER NOT NULL,
    media_percentage REAL NOT NULL,
    image_percentage REAL NOT NULL,
    activity_status TEXT NOT NULL CHECK(activity_status IN ('active', 'moderate', 'inactive'))
);

CREATE TABLE IF NOT EXISTS fct_messages (
    message_id INTEGER NOT NULL,
    channel_key INTEGER NOT NULL REFERENCES dim_channels(channel_key),
    date_key INTEGER NOT NULL REFERENCES dim_dates(date_key),
    message_text TEXT NOT NULL,
    message_length INTEGER NOT NULL,
    view_count INTEGER NOT NULL,
    forward_count INTEGER NOT NULL,
    has_image INTEGER NOT NULL,
    engagement_score INTEGER NOT NULL,
    potential_products TEXT,
    PRIMARY KEY (message_id, channel_key)
);

CREATE TABLE IF NOT EXISTS mart_product_summary (
    product_name TEXT PRIMARY KEY,
    product_category TEXT NOT NULL,
    strength TEXT,
    mention_count INTEGER NOT NULL,
    channel_count INTEGER NOT NULL,
    total_views INTEGER NOT NULL,
    total_forwards INTEGER NOT NULL,
    avg_views REAL NOT NULL,
    avg_forwards REAL NOT NULL,
    first_mentioned TEXT NOT NULL,
    last_mentioned TEXT NOT NULL,
    popularity_rank INTEGER NOT NULL,
    views_rank INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mart_channel_performance (
    channel_key INTEGER PRIMARY KEY REFERENCES dim_channels(channel_key),
    channel_name TEXT NOT NULL,
    channel_type TEXT NOT NULL,
    total_posts INTEGER NOT NULL,
    avg_views REAL NOT NULL,
    image_percentage REAL NOT NULL,
    activity_status TEXT NOT NULL,
    posts_last_7_days INTEGER NOT NULL,
    weekly_growth_percentage REAL NOT NULL,
    content_effectiveness_score REAL NOT NULL,
    performance_category TEXT NOT NULL,
    improvement_recommendation TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS build_runs (
    run_id TEXT PRIMARY KEY,
    as_of TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('running', 'succeeded', 'failed')),
    raw_count INTEGER DEFAULT 0,
    staged_count INTEGER DEFAULT 0,
    flagged_count INTEGER DEFAULT 0,
    null_date_dropped INTEGER DEFAULT 0,
    future_dropped INTEGER DEFAULT 0,
    date_count INTEGER DEFAULT 0,
    channel_count INTEGER DEFAULT 0,
    fact_count INTEGER DEFAULT 0,
    dropped_no_channel INTEGER DEFAULT 0,
    dropped_no_date INTEGER DEFAULT 0,
    product_count INTEGER DEFAULT 0,
    performance_count INTEGER DEFAULT 0,
    started_at TEXT DEFAULT (datetime('now')),
    finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_raw_channel ON raw_messages(channel_name);
CREATE INDEX IF NOT EXISTS idx_stg_status ON stg_messages(data_quality_status);
CREATE INDEX IF NOT EXISTS idx_stg_channel ON stg_messages(channel_name);
CREATE INDEX IF NOT EXISTS idx_fct_channel ON fct_messages(channel_key);
CREATE INDEX IF NOT EXISTS idx_fct_date ON fct_messages(date_key);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
