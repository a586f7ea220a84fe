package warehouse

import "encoding/json"

// InsertRawMessage inserts a raw message. Returns the row ID on success, 0 if
// the (message_id, channel_name) pair already landed (keep-first dedup).
func (db *DB) InsertRawMessage(m *RawMessage) (int64, error) {
	products, err := marshalProducts(m.PotentialProducts)
	if err != nil {
		return 0, err
	}

	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO raw_messages
		(message_id, channel_name, channel_username, channel_title, message_date,
		 message_text, has_media, image_path, views, forwards, scraped_at, potential_products)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MessageID, m.ChannelName, m.ChannelUsername, m.ChannelTitle, m.MessageDate,
		m.MessageText, boolToInt(m.HasMedia), m.ImagePath, m.Views, m.Forwards,
		m.ScrapedAt, products,
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, nil
	}
	return result.LastInsertId()
}

// GetRawMessages returns all landed raw messages in insertion order.
func (db *DB) GetRawMessages() ([]RawMessage, error) {
	rows, err := db.conn.Query(
		`SELECT id, message_id, channel_name, channel_username, channel_title,
		 message_date, message_text, has_media, image_path, views, forwards,
		 scraped_at, potential_products, loaded_at
		FROM raw_messages ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []RawMessage
	for rows.Next() {
		var m RawMessage
		var hasMedia int
		var products *string
		if err := rows.Scan(&m.ID, &m.MessageID, &m.ChannelName, &m.ChannelUsername,
			&m.ChannelTitle, &m.MessageDate, &m.MessageText, &hasMedia, &m.ImagePath,
			&m.Views, &m.Forwards, &m.ScrapedAt, &products, &m.LoadedAt); err != nil {
			return nil, err
		}
		m.HasMedia = hasMedia != 0
		m.PotentialProducts = unmarshalProducts(products)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountRawMessages returns the number of landed raw messages.
func (db *DB) CountRawMessages() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM raw_messages").Scan(&n)
	return n, err
}

func marshalProducts(products []string) (*string, error) {
	if products == nil {
		return nil, nil
	}
	data, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func unmarshalProducts(s *string) []string {
	if s == nil {
		return nil
	}
	var products []string
	if err := json.Unmarshal([]byte(*s), &products); err != nil {
		return nil
	}
	return products
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
