package warehouse

// GetStats returns aggregate counts across all warehouse tables.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM raw_messages", &s.RawMessages},
		{"SELECT COUNT(*) FROM stg_messages", &s.StagedMessages},
		{"SELECT COUNT(*) FROM stg_messages WHERE data_quality_status = 'needs_review'", &s.NeedsReview},
		{"SELECT COUNT(*) FROM dim_dates", &s.Dates},
		{"SELECT COUNT(*) FROM dim_channels", &s.Channels},
		{"SELECT COUNT(*) FROM fct_messages", &s.Facts},
		{"SELECT COUNT(*) FROM mart_product_summary", &s.Products},
		{"SELECT COUNT(*) FROM mart_channel_performance", &s.PerformanceRows},
		{"SELECT COUNT(*) FROM build_runs", &s.BuildRuns},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	if err := db.conn.QueryRow(
		"SELECT MAX(finished_at) FROM build_runs WHERE status = 'succeeded'",
	).Scan(&s.LastBuild); err != nil {
		return nil, err
	}

	return s, nil
}
