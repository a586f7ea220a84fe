package warehouse

import "database/sql"

// StartBuildRun records the beginning of a pipeline build.
func (db *DB) StartBuildRun(runID, asOf string) error {
	_, err := db.conn.Exec(
		`INSERT INTO build_runs (run_id, as_of, status) VALUES (?, ?, 'running')`,
		runID, asOf,
	)
	return err
}

// FinishBuildRun records the outcome and per-stage counts of a build.
func (db *DB) FinishBuildRun(run *BuildRun) error {
	_, err := db.conn.Exec(
		`UPDATE build_runs SET
		 status = ?, raw_count = ?, staged_count = ?, flagged_count = ?,
		 null_date_dropped = ?, future_dropped = ?, date_count = ?, channel_count = ?,
		 fact_count = ?, dropped_no_channel = ?, dropped_no_date = ?,
		 product_count = ?, performance_count = ?, finished_at = datetime('now')
		WHERE run_id = ?`,
		run.Status, run.RawCount, run.StagedCount, run.FlaggedCount,
		run.NullDateDropped, run.FutureDropped, run.DateCount, run.ChannelCount,
		run.FactCount, run.DroppedNoChannel, run.DroppedNoDate,
		run.ProductCount, run.PerformanceCount, run.RunID,
	)
	return err
}

// GetLastBuildRun returns the most recent build run, or nil if none exist.
func (db *DB) GetLastBuildRun() (*BuildRun, error) {
	row := db.conn.QueryRow(
		`SELECT run_id, as_of, status, raw_count, staged_count, flagged_count,
		 null_date_dropped, future_dropped, date_count, channel_count, fact_count,
		 dropped_no_channel, dropped_no_date, product_count, performance_count,
		 started_at, finished_at
		FROM build_runs ORDER BY started_at DESC, run_id DESC LIMIT 1`,
	)

	var r BuildRun
	err := row.Scan(&r.RunID, &r.AsOf, &r.Status, &r.RawCount, &r.StagedCount,
		&r.FlaggedCount, &r.NullDateDropped, &r.FutureDropped, &r.DateCount,
		&r.ChannelCount, &r.FactCount, &r.DroppedNoChannel, &r.DroppedNoDate,
		&r.ProductCount, &r.PerformanceCount, &r.StartedAt, &r.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
