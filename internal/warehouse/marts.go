package warehouse

// ReplaceProductSummaries atomically replaces the product mention mart.
func (db *DB) ReplaceProductSummaries(products []ProductSummary) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM mart_product_summary"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO mart_product_summary
		(product_name, product_category, strength, mention_count, channel_count,
		 total_views, total_forwards, avg_views, avg_forwards, first_mentioned,
		 last_mentioned, popularity_rank, views_rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(
			p.ProductName, p.ProductCategory, p.Strength, p.MentionCount, p.ChannelCount,
			p.TotalViews, p.TotalForwards, p.AvgViews, p.AvgForwards, p.FirstMentioned,
			p.LastMentioned, p.PopularityRank, p.ViewsRank,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetProductSummaries returns the product mart ordered by popularity_rank.
// limit <= 0 returns all rows.
func (db *DB) GetProductSummaries(limit int) ([]ProductSummary, error) {
	query := `SELECT product_name, product_category, strength, mention_count,
		 channel_count, total_views, total_forwards, avg_views, avg_forwards,
		 first_mentioned, last_mentioned, popularity_rank, views_rank
		FROM mart_product_summary ORDER BY popularity_rank`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductSummary
	for rows.Next() {
		var p ProductSummary
		if err := rows.Scan(&p.ProductName, &p.ProductCategory, &p.Strength,
			&p.MentionCount, &p.ChannelCount, &p.TotalViews, &p.TotalForwards,
			&p.AvgViews, &p.AvgForwards, &p.FirstMentioned, &p.LastMentioned,
			&p.PopularityRank, &p.ViewsRank); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ReplaceChannelPerformance atomically replaces the channel performance mart.
func (db *DB) ReplaceChannelPerformance(perf []ChannelPerformance) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM mart_channel_performance"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO mart_channel_performance
		(channel_key, channel_name, channel_type, total_posts, avg_views,
		 image_percentage, activity_status, posts_last_7_days, weekly_growth_percentage,
		 content_effectiveness_score, performance_category, improvement_recommendation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range perf {
		if _, err := stmt.Exec(
			p.ChannelKey, p.ChannelName, p.ChannelType, p.TotalPosts, p.AvgViews,
			p.ImagePercentage, p.ActivityStatus, p.PostsLast7Days,
			p.WeeklyGrowthPercentage, p.ContentEffectivenessScore,
			p.PerformanceCategory, p.ImprovementRecommendation,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetChannelPerformance returns the performance mart for channels with at
// least minPosts total posts, ordered by content_effectiveness_score DESC.
func (db *DB) GetChannelPerformance(minPosts int) ([]ChannelPerformance, error) {
	rows, err := db.conn.Query(
		`SELECT channel_key, channel_name, channel_type, total_posts, avg_views,
		 image_percentage, activity_status, posts_last_7_days, weekly_growth_percentage,
		 content_effectiveness_score, performance_category, improvement_recommendation
		FROM mart_channel_performance
		WHERE total_posts >= ?
		ORDER BY content_effectiveness_score DESC, channel_key`,
		minPosts,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perf []ChannelPerformance
	for rows.Next() {
		var p ChannelPerformance
		if err := rows.Scan(&p.ChannelKey, &p.ChannelName, &p.ChannelType,
			&p.TotalPosts, &p.AvgViews, &p.ImagePercentage, &p.ActivityStatus,
			&p.PostsLast7Days, &p.WeeklyGrowthPercentage, &p.ContentEffectivenessScore,
			&p.PerformanceCategory, &p.ImprovementRecommendation); err != nil {
			return nil, err
		}
		perf = append(perf, p)
	}
	return perf, rows.Err()
}
