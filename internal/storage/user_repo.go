package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultUserID is the user the server provisions at startup.
const DefaultUserID int64 = 1

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) WithTx(tx *sql.Tx) *UserRepo { return &UserRepo{db: tx} }

// Ensure creates the user row if it does not exist yet.
func (r *UserRepo) Ensure(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO users (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, id); err != nil {
		return fmt.Errorf("user ensure: %w", err)
	}
	return nil
}
