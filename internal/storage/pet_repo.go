package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type PetRepo struct {
	db DBTX
}

func NewPetRepo(db DBTX) *PetRepo {
	return &PetRepo{db: db}
}

func (r *PetRepo) WithTx(tx *sql.Tx) *PetRepo { return &PetRepo{db: tx} }

func (r *PetRepo) Get(ctx context.Context, userID int64) (*PetState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, level, xp, next_level_threshold FROM pet_state WHERE user_id = ?`, userID)

	var p PetState
	if err := row.Scan(&p.UserID, &p.Level, &p.XP, &p.NextLevelThreshold); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("pet get: %w", err)
	}
	return &p, nil
}

// GetOrCreate returns the user's pet, inserting initial when none exists.
// The user row must already exist.
func (r *PetRepo) GetOrCreate(ctx context.Context, userID int64, initial PetState) (*PetState, error) {
	p, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_state (user_id, level, xp, next_level_threshold)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, initial.Level, initial.XP, initial.NextLevelThreshold); err != nil {
		return nil, fmt.Errorf("pet insert: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *PetRepo) Update(ctx context.Context, p *PetState) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pet_state
		SET level = ?, xp = ?, next_level_threshold = ?
		WHERE user_id = ?
	`, p.Level, p.XP, p.NextLevelThreshold, p.UserID)
	if err != nil {
		return fmt.Errorf("pet update: %w", err)
	}
	return nil
}
