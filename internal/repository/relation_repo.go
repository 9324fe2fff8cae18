package repository

import (
	"context"
	"fmt"

	"github.com/darkodi/foodgram/internal/model"
)

// relation describes a unique (owner, target) pair table.
type relation struct {
	table  string
	owner  string
	target string
}

var (
	favorites     = relation{table: "favorites", owner: "user_id", target: "recipe_id"}
	shoppingCart  = relation{table: "shopping_cart", owner: "user_id", target: "recipe_id"}
	subscriptions = relation{table: "subscriptions", owner: "user_id", target: "author_id"}
)

// add inserts the pair. The unique constraint is the only guard, so a
// duplicate comes back as ErrConflict rather than a driver error.
func (r *Repository) add(ctx context.Context, rel relation, owner, target int64) error {
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", rel.table, rel.owner, rel.target)
	if _, err := r.db.ExecContext(ctx, r.rebind(query), owner, target); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert %s: %w", rel.table, err)
	}
	return nil
}

// remove deletes the pair, returning ErrNotFound when it was absent.
func (r *Repository) remove(ctx context.Context, rel relation, owner, target int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", rel.table, rel.owner, rel.target)
	res, err := r.db.ExecContext(ctx, r.rebind(query), owner, target)
	if err != nil {
		return fmt.Errorf("delete %s: %w", rel.table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) has(ctx context.Context, rel relation, owner, target int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? AND %s = ?", rel.table, rel.owner, rel.target)
	ok, err := r.exists(ctx, query, owner, target)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", rel.table, err)
	}
	return ok, nil
}

func (r *Repository) AddFavorite(ctx context.Context, userID, recipeID int64) error {
	return r.add(ctx, favorites, userID, recipeID)
}

func (r *Repository) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return r.remove(ctx, favorites, userID, recipeID)
}

func (r *Repository) IsFavorited(ctx context.Context, userID, recipeID int64) (bool, error) {
	return r.has(ctx, favorites, userID, recipeID)
}

func (r *Repository) AddToCart(ctx context.Context, userID, recipeID int64) error {
	return r.add(ctx, shoppingCart, userID, recipeID)
}

func (r *Repository) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return r.remove(ctx, shoppingCart, userID, recipeID)
}

func (r *Repository) IsInCart(ctx context.Context, userID, recipeID int64) (bool, error) {
	return r.has(ctx, shoppingCart, userID, recipeID)
}

func (r *Repository) Subscribe(ctx context.Context, userID, authorID int64) error {
	return r.add(ctx, subscriptions, userID, authorID)
}

func (r *Repository) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	return r.remove(ctx, subscriptions, userID, authorID)
}

func (r *Repository) IsSubscribed(ctx context.Context, userID, authorID int64) (bool, error) {
	return r.has(ctx, subscriptions, userID, authorID)
}

// ListSubscriptions returns the authors userID follows, ordered by username.
func (r *Repository) ListSubscriptions(ctx context.Context, userID int64) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
        SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.auth_token
        FROM subscriptions s JOIN users u ON u.id = s.author_id
        WHERE s.user_id = ?
        ORDER BY u.username, u.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.AuthToken); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
