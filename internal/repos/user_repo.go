package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"barter/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user; a taken username (case-insensitive) is domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, username, email, hash, createdAt string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
	  INSERT INTO users(username, email, password_hash, created_at)
	  VALUES(?, ?, ?, ?)
	`, username, email, hash, createdAt)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("username %q: %w", username, domain.ErrConflict)
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
	  SELECT id, username, email, password_hash, created_at
	  FROM users WHERE LOWER(username) = LOWER(?)`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
	  SELECT id, username, email, password_hash, created_at
	  FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return &u, nil
}
