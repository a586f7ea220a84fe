package warehouse

// ReplaceFacts atomically replaces the message fact table.
func (db *DB) ReplaceFacts(facts []MessageFact) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fct_messages"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO fct_messages
		(message_id, channel_key, date_key, message_text, message_length,
		 view_count, forward_count, has_image, engagement_score, potential_products)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range facts {
		f := &facts[i]
		products, err := marshalProducts(f.PotentialProducts)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(
			f.MessageID, f.ChannelKey, f.DateKey, f.MessageText, f.MessageLength,
			f.ViewCount, f.ForwardCount, boolToInt(f.HasImage), f.EngagementScore,
			products,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetFacts returns all fact rows ordered by (channel_key, message_id).
func (db *DB) GetFacts() ([]MessageFact, error) {
	rows, err := db.conn.Query(
		`SELECT message_id, channel_key, date_key, message_text, message_length,
		 view_count, forward_count, has_image, engagement_score, potential_products
		FROM fct_messages ORDER BY channel_key, message_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []MessageFact
	for rows.Next() {
		var f MessageFact
		var hasImage int
		var products *string
		if err := rows.Scan(&f.MessageID, &f.ChannelKey, &f.DateKey, &f.MessageText,
			&f.MessageLength, &f.ViewCount, &f.ForwardCount, &hasImage,
			&f.EngagementScore, &products); err != nil {
			return nil, err
		}
		f.HasImage = hasImage != 0
		f.PotentialProducts = unmarshalProducts(products)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// GetDailyActivity rolls up the fact table per channel and calendar day.
func (db *DB) GetDailyActivity() ([]DailyActivity, error) {
	rows, err := db.conn.Query(
		`SELECT f.channel_key, d.full_date, COUNT(*), SUM(f.view_count)
		FROM fct_messages f
		JOIN dim_dates d ON f.date_key = d.date_key
		GROUP BY f.channel_key, d.full_date
		ORDER BY f.channel_key, d.full_date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var daily []DailyActivity
	for rows.Next() {
		var a DailyActivity
		if err := rows.Scan(&a.ChannelKey, &a.Day, &a.Posts, &a.TotalViews); err != nil {
			return nil, err
		}
		daily = append(daily, a)
	}
	return daily, rows.Err()
}

// GetWeeklyActivity rolls up the fact table per channel and ISO week.
// Bucketing happens on the Go side since SQLite's strftime week numbering
// is not ISO 8601.
func (db *DB) GetWeeklyActivity() ([]WeeklyActivity, error) {
	daily, err := db.GetDailyActivity()
	if err != nil {
		return nil, err
	}

	type bucket struct {
		channelKey int
		week       string
	}
	counts := make(map[bucket]int)
	var order []bucket
	for _, a := range daily {
		day, err := ParseMessageDate(a.Day)
		if err != nil {
			return nil, err
		}
		b := bucket{a.ChannelKey, ISOWeekLabel(day)}
		if _, seen := counts[b]; !seen {
			order = append(order, b)
		}
		counts[b] += a.Posts
	}

	weekly := make([]WeeklyActivity, 0, len(order))
	for _, b := range order {
		weekly = append(weekly, WeeklyActivity{
			ChannelKey: b.channelKey,
			Week:       b.week,
			Posts:      counts[b],
		})
	}
	return weekly, nil
}
