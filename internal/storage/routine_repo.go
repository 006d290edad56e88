package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

type RoutineRepo struct {
	db DBTX
}

func NewRoutineRepo(db DBTX) *RoutineRepo {
	return &RoutineRepo{db: db}
}

func (r *RoutineRepo) WithTx(tx *sql.Tx) *RoutineRepo { return &RoutineRepo{db: tx} }

const routineColumns = `id, user_id, title, time, days, difficulty, active, icon_key`

func (r *RoutineRepo) Insert(ctx context.Context, in Routine) (int64, error) {
	days, err := encodeDays(in.Days)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO routines (user_id, title, time, days, difficulty, active, icon_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.UserID, in.Title, in.Time, days, in.Difficulty, boolToInt(in.Active), in.IconKey)
	if err != nil {
		return 0, fmt.Errorf("routine insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("routine last insert id: %w", err)
	}
	return id, nil
}

func (r *RoutineRepo) Get(ctx context.Context, id int64) (*Routine, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+routineColumns+` FROM routines WHERE id = ?`, id)
	return scanRoutine(row)
}

func (r *RoutineRepo) ListByUser(ctx context.Context, userID int64) ([]Routine, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+routineColumns+` FROM routines WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("routine list: %w", err)
	}
	defer rows.Close()

	var out []Routine
	for rows.Next() {
		rt, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("routine list rows: %w", err)
	}
	return out, nil
}

func (r *RoutineRepo) Update(ctx context.Context, rt Routine) error {
	days, err := encodeDays(rt.Days)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE routines
		SET title = ?, time = ?, days = ?, difficulty = ?, active = ?, icon_key = ?
		WHERE id = ?
	`, rt.Title, rt.Time, days, rt.Difficulty, boolToInt(rt.Active), rt.IconKey, rt.ID)
	if err != nil {
		return fmt.Errorf("routine update: %w", err)
	}
	return nil
}

// Delete reports whether a row was removed.
func (r *RoutineRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("routine delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("routine delete rows affected: %w", err)
	}
	return n > 0, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row scanner) (*Routine, error) {
	var (
		rt      Routine
		days    string
		active  int
		iconKey sql.NullString
	)
	if err := row.Scan(&rt.ID, &rt.UserID, &rt.Title, &rt.Time, &days, &rt.Difficulty, &active, &iconKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("routine scan: %w", err)
	}
	rt.Days = decodeDays(days)
	rt.Active = active != 0
	rt.IconKey = "yoga"
	if iconKey.Valid && iconKey.String != "" {
		rt.IconKey = iconKey.String
	}
	return &rt, nil
}

func encodeDays(days []string) (string, error) {
	if days == nil {
		days = []string{}
	}
	data, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("marshal days: %w", err)
	}
	return string(data), nil
}

// decodeDays accepts a JSON array and falls back to legacy comma-separated text.
func decodeDays(raw string) []string {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil && list != nil {
		return list
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
