package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/darkodi/foodgram/internal/model"
)

const userColumns = "id, email, username, first_name, last_name, auth_token"

func (r *Repository) CreateUser(ctx context.Context, u *model.User) error {
	err := r.db.QueryRowContext(ctx, r.rebind(`
        INSERT INTO users (email, username, first_name, last_name, auth_token)
        VALUES (?, ?, ?, ?, ?) RETURNING id`),
		u.Email, u.Username, u.FirstName, u.LastName, u.AuthToken,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByToken resolves an auth token to its owner.
func (r *Repository) GetUserByToken(ctx context.Context, token string) (*model.User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE auth_token = ?", token)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, r.rebind(query), arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.AuthToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
