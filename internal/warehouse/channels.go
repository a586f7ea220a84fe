package warehouse

// ReplaceChannels atomically replaces the channel dimension. Rows in the fact
// table and the performance mart reference channel keys, so both are cleared
// here; the pipeline rebuilds them downstream in dependency order.
func (db *DB) ReplaceChannels(channels []Channel) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"mart_channel_performance", "fct_messages", "dim_channels"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare(
		`INSERT INTO dim_channels
		(channel_key, channel_name, channel_username, channel_title, channel_type,
		 first_post_date, last_post_date, total_posts, avg_views, avg_forwards,
		 posts_with_media, posts_with_image, media_percentage, image_percentage,
		 activity_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range channels {
		if _, err := stmt.Exec(
			c.ChannelKey, c.ChannelName, c.ChannelUsername, c.ChannelTitle, c.ChannelType,
			c.FirstPostDate.Format(DateTimeLayout), c.LastPostDate.Format(DateTimeLayout),
			c.TotalPosts, c.AvgViews, c.AvgForwards, c.PostsWithMedia, c.PostsWithImage,
			c.MediaPercentage, c.ImagePercentage, c.ActivityStatus,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetChannels returns the channel dimension ordered by channel_key.
func (db *DB) GetChannels() ([]Channel, error) {
	rows, err := db.conn.Query(
		`SELECT channel_key, channel_name, channel_username, channel_title, channel_type,
		 first_post_date, last_post_date, total_posts, avg_views, avg_forwards,
		 posts_with_media, posts_with_image, media_percentage, image_percentage,
		 activity_status
		FROM dim_channels ORDER BY channel_key`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var c Channel
		var first, last string
		if err := rows.Scan(&c.ChannelKey, &c.ChannelName, &c.ChannelUsername,
			&c.ChannelTitle, &c.ChannelType, &first, &last, &c.TotalPosts,
			&c.AvgViews, &c.AvgForwards, &c.PostsWithMedia, &c.PostsWithImage,
			&c.MediaPercentage, &c.ImagePercentage, &c.ActivityStatus); err != nil {
			return nil, err
		}
		if c.FirstPostDate, err = ParseMessageDate(first); err != nil {
			return nil, err
		}
		if c.LastPostDate, err = ParseMessageDate(last); err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}
