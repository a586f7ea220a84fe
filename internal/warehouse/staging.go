package warehouse

import "database/sql"

// ReplaceStagedMessages atomically replaces the staging table contents.
// Rebuilding from unchanged raw input is idempotent.
func (db *DB) ReplaceStagedMessages(staged []StagedMessage) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM stg_messages"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO stg_messages
		(message_id, channel_name, channel_username, channel_title, message_date,
		 cleaned_message_text, message_length, has_media, has_image, views, forwards,
		 is_empty_message, is_future_date, has_negative_views, data_quality_status,
		 potential_products)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range staged {
		m := &staged[i]
		products, err := marshalProducts(m.PotentialProducts)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(
			m.MessageID, m.ChannelName, m.ChannelUsername, m.ChannelTitle,
			m.MessageDate.Format(DateTimeLayout), m.CleanedMessageText, m.MessageLength,
			boolToInt(m.HasMedia), boolToInt(m.HasImage), m.Views, m.Forwards,
			boolToInt(m.IsEmptyMessage), boolToInt(m.IsFutureDate),
			boolToInt(m.HasNegativeViews), m.DataQualityStatus, products,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetStagedMessages returns all staged messages in (channel, message) order.
func (db *DB) GetStagedMessages() ([]StagedMessage, error) {
	return db.queryStaged(
		`SELECT message_id, channel_name, channel_username, channel_title, message_date,
		 cleaned_message_text, message_length, has_media, has_image, views, forwards,
		 is_empty_message, is_future_date, has_negative_views, data_quality_status,
		 potential_products
		FROM stg_messages ORDER BY channel_name, message_id`,
	)
}

// GetValidStagedMessages returns staged messages with data_quality_status = 'valid'.
func (db *DB) GetValidStagedMessages() ([]StagedMessage, error) {
	return db.queryStaged(
		`SELECT message_id, channel_name, channel_username, channel_title, message_date,
		 cleaned_message_text, message_length, has_media, has_image, views, forwards,
		 is_empty_message, is_future_date, has_negative_views, data_quality_status,
		 potential_products
		FROM stg_messages WHERE data_quality_status = 'valid'
		ORDER BY channel_name, message_id`,
	)
}

func (db *DB) queryStaged(query string, args ...any) ([]StagedMessage, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staged []StagedMessage
	for rows.Next() {
		m, err := scanStaged(rows)
		if err != nil {
			return nil, err
		}
		staged = append(staged, *m)
	}
	return staged, rows.Err()
}

func scanStaged(rows *sql.Rows) (*StagedMessage, error) {
	var m StagedMessage
	var dateText string
	var hasMedia, hasImage, isEmpty, isFuture, negViews int
	var products *string
	if err := rows.Scan(&m.MessageID, &m.ChannelName, &m.ChannelUsername, &m.ChannelTitle,
		&dateText, &m.CleanedMessageText, &m.MessageLength, &hasMedia, &hasImage,
		&m.Views, &m.Forwards, &isEmpty, &isFuture, &negViews,
		&m.DataQualityStatus, &products); err != nil {
		return nil, err
	}

	date, err := ParseMessageDate(dateText)
	if err != nil {
		return nil, err
	}
	m.MessageDate = date
	m.HasMedia = hasMedia != 0
	m.HasImage = hasImage != 0
	m.IsEmptyMessage = isEmpty != 0
	m.IsFutureDate = isFuture != 0
	m.HasNegativeViews = negViews != 0
	m.PotentialProducts = unmarshalProducts(products)
	return &m, nil
}
