package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsRepo persists one weekly summary per (user, week start).
type StatsRepo struct {
	db DBTX
}

func NewStatsRepo(db DBTX) *StatsRepo {
	return &StatsRepo{db: db}
}

func (r *StatsRepo) WithTx(tx *sql.Tx) *StatsRepo { return &StatsRepo{db: tx} }

func (r *StatsRepo) Get(ctx context.Context, userID int64, weekStart string) (*StatsCacheRow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, week_start, completion_rate, streak, best_slots_json, insights_json, tips_json
		FROM stats_cache
		WHERE user_id = ? AND week_start = ?
	`, userID, weekStart)

	var s StatsCacheRow
	if err := row.Scan(&s.UserID, &s.WeekStart, &s.CompletionRate, &s.Streak, &s.BestSlotsJSON, &s.InsightsJSON, &s.TipsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("stats get: %w", err)
	}
	return &s, nil
}

// Insert stores the row unless one already exists for the week. The first
// writer wins; the return value reports whether this call stored it.
func (r *StatsRepo) Insert(ctx context.Context, s StatsCacheRow) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO stats_cache (user_id, week_start, completion_rate, streak, best_slots_json, insights_json, tips_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_start) DO NOTHING
	`, s.UserID, s.WeekStart, s.CompletionRate, s.Streak, s.BestSlotsJSON, s.InsightsJSON, s.TipsJSON)
	if err != nil {
		return false, fmt.Errorf("stats insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("stats insert rows affected: %w", err)
	}
	return n > 0, nil
}

// Replace overwrites the week's row. Only used to heal an unreadable payload.
func (r *StatsRepo) Replace(ctx context.Context, s StatsCacheRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stats_cache (user_id, week_start, completion_rate, streak, best_slots_json, insights_json, tips_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_start) DO UPDATE SET
			completion_rate = excluded.completion_rate,
			streak = excluded.streak,
			best_slots_json = excluded.best_slots_json,
			insights_json = excluded.insights_json,
			tips_json = excluded.tips_json
	`, s.UserID, s.WeekStart, s.CompletionRate, s.Streak, s.BestSlotsJSON, s.InsightsJSON, s.TipsJSON)
	if err != nil {
		return fmt.Errorf("stats replace: %w", err)
	}
	return nil
}
