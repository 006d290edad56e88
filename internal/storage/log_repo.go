package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

const (
	DefaultLogListLimit = 100
	MaxLogListLimit     = 500
)

// LogRepo is the append-only completion event log.
type LogRepo struct {
	db DBTX
}

func NewLogRepo(db DBTX) *LogRepo {
	return &LogRepo{db: db}
}

func (r *LogRepo) WithTx(tx *sql.Tx) *LogRepo { return &LogRepo{db: tx} }

func (r *LogRepo) Insert(ctx context.Context, l CompletionLog) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO routine_logs (user_id, routine_id, status, started_at, ended_at, note)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.UserID, l.RoutineID, l.Status, l.StartedAt, l.EndedAt, l.Note)
	if err != nil {
		return 0, fmt.Errorf("log insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("log last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit events for the user, most recent end time first.
// Clients send several timestamp shapes, so ordering is done on the parsed
// value; ties and unparseable end times fall back to id DESC, the latter after
// every parseable row.
func (r *LogRepo) Recent(ctx context.Context, userID int64, limit int) ([]CompletionLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, routine_id, status, started_at, ended_at, note
		FROM routine_logs
		WHERE user_id = ?
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("log recent: %w", err)
	}
	all, err := collectLogs(rows)
	if err != nil {
		return nil, err
	}

	type keyed struct {
		log   CompletionLog
		ended time.Time
		ok    bool
	}
	ks := make([]keyed, len(all))
	for i, l := range all {
		t, err := ParseTimestamp(l.EndedAt)
		ks[i] = keyed{log: l, ended: t, ok: err == nil}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.ended.After(b.ended)
	})

	if limit >= 0 && limit < len(ks) {
		ks = ks[:limit]
	}
	out := make([]CompletionLog, len(ks))
	for i, k := range ks {
		out[i] = k.log
	}
	return out, nil
}

// InWindow returns the user's events whose start date falls in [start, end).
// Rows with an unparseable started_at are skipped.
func (r *LogRepo) InWindow(ctx context.Context, userID int64, start, end time.Time) ([]CompletionLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, routine_id, status, started_at, ended_at, note
		FROM routine_logs
		WHERE user_id = ?
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("log window: %w", err)
	}
	all, err := collectLogs(rows)
	if err != nil {
		return nil, err
	}

	start, end = CivilDate(start), CivilDate(end)
	out := make([]CompletionLog, 0, len(all))
	for _, l := range all {
		started, err := ParseTimestamp(l.StartedAt)
		if err != nil {
			continue
		}
		day := CivilDate(started)
		if !day.Before(start) && day.Before(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

// List returns the newest events across all users.
func (r *LogRepo) List(ctx context.Context, limit int) ([]CompletionLog, error) {
	if limit <= 0 {
		limit = DefaultLogListLimit
	}
	if limit > MaxLogListLimit {
		limit = MaxLogListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, routine_id, status, started_at, ended_at, note
		FROM routine_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("log list: %w", err)
	}
	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]CompletionLog, error) {
	defer rows.Close()

	var out []CompletionLog
	for rows.Next() {
		var (
			l    CompletionLog
			note sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.RoutineID, &l.Status, &l.StartedAt, &l.EndedAt, &note); err != nil {
			return nil, fmt.Errorf("log scan: %w", err)
		}
		if note.Valid {
			v := note.String
			l.Note = &v
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("log rows: %w", err)
	}
	return out, nil
}
