package postgres

import (
	"context"
	"database/sql"

	"digistore/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureUserExists creates user if not exists; known users are left untouched
func (r *UserRepo) EnsureUserExists(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (id, username, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.DisplayName)
	return err
}
