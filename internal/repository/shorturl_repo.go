package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/darkodi/foodgram/internal/model"
)

// CreateShortURL stores the mapping. Both full_link and short_link are
// unique; hitting either constraint returns ErrConflict.
func (r *Repository) CreateShortURL(ctx context.Context, u *model.ShortURL) error {
	err := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO short_urls (full_link, short_link) VALUES (?, ?) RETURNING id"),
		u.FullLink, u.ShortLink,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert short_url: %w", err)
	}
	return nil
}

func (r *Repository) GetShortURLByFullLink(ctx context.Context, fullLink string) (*model.ShortURL, error) {
	return r.getShortURL(ctx, "full_link", fullLink)
}

func (r *Repository) GetShortURLByShortLink(ctx context.Context, shortLink string) (*model.ShortURL, error) {
	return r.getShortURL(ctx, "short_link", shortLink)
}

func (r *Repository) ShortLinkExists(ctx context.Context, shortLink string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM short_urls WHERE short_link = ?", shortLink)
}

func (r *Repository) getShortURL(ctx context.Context, column, value string) (*model.ShortURL, error) {
	u := &model.ShortURL{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		"SELECT id, full_link, short_link, created_at FROM short_urls WHERE "+column+" = ?"), value).
		Scan(&u.ID, &u.FullLink, &u.ShortLink, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query short_url: %w", err)
	}
	return u, nil
}
