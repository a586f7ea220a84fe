package warehouse

// InsertDateRows adds date dimension rows, ignoring date_key values that
// already exist. Expanding the configured range only adds days; existing
// date_key -> full_date mappings are never altered.
func (db *DB) InsertDateRows(dates []DateRow) (added int, err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO dim_dates
		(date_key, full_date, year, quarter, month, month_name, week_of_year,
		 day_of_month, day_of_week, day_name, is_weekend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, d := range dates {
		result, err := stmt.Exec(
			d.DateKey, d.FullDate, d.Year, d.Quarter, d.Month, d.MonthName,
			d.WeekOfYear, d.DayOfMonth, d.DayOfWeek, d.DayName, boolToInt(d.IsWeekend),
		)
		if err != nil {
			return 0, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	return added, tx.Commit()
}

// GetDateRows returns the full date dimension ordered by date_key.
func (db *DB) GetDateRows() ([]DateRow, error) {
	rows, err := db.conn.Query(
		`SELECT date_key, full_date, year, quarter, month, month_name, week_of_year,
		 day_of_month, day_of_week, day_name, is_weekend
		FROM dim_dates ORDER BY date_key`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []DateRow
	for rows.Next() {
		var d DateRow
		var weekend int
		if err := rows.Scan(&d.DateKey, &d.FullDate, &d.Year, &d.Quarter, &d.Month,
			&d.MonthName, &d.WeekOfYear, &d.DayOfMonth, &d.DayOfWeek, &d.DayName,
			&weekend); err != nil {
			return nil, err
		}
		d.IsWeekend = weekend != 0
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// GetDateKeys returns the set of existing date_key values.
func (db *DB) GetDateKeys() (map[int]bool, error) {
	rows, err := db.conn.Query("SELECT date_key FROM dim_dates")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[int]bool)
	for rows.Next() {
		var k int
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, rows.Err()
}
