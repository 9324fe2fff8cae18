package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/darkodi/foodgram/internal/model"
)

// ============================================================
// TAGS
// ============================================================

func (r *Repository) CreateTag(ctx context.Context, t *model.Tag) error {
	err := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO tags (name, slug) VALUES (?, ?) RETURNING id"),
		t.Name, t.Slug,
	).Scan(&t.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (r *Repository) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug FROM tags ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *Repository) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	t := &model.Tag{}
	err := r.db.QueryRowContext(ctx, r.rebind("SELECT id, name, slug FROM tags WHERE id = ?"), id).
		Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query tag: %w", err)
	}
	return t, nil
}

// MissingTagIDs returns the ids that do not name a stored tag.
func (r *Repository) MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return r.missingIDs(ctx, "tags", ids)
}

// ============================================================
// INGREDIENTS
// ============================================================

func (r *Repository) CreateIngredient(ctx context.Context, in *model.Ingredient) error {
	err := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO ingredients (name, name_lower, measurement_unit) VALUES (?, ?, ?) RETURNING id"),
		in.Name, strings.ToLower(in.Name), in.MeasurementUnit,
	).Scan(&in.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert ingredient: %w", err)
	}
	return nil
}

// SearchIngredients lists ingredients whose name starts with prefix,
// ignoring case. An empty prefix lists everything. Matching runs on
// name_lower, folded in Go, since SQLite's LOWER only folds ASCII.
func (r *Repository) SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	query := "SELECT id, name, measurement_unit FROM ingredients"
	var args []any
	if prefix != "" {
		query += ` WHERE name_lower LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(strings.ToLower(prefix))+"%")
	}
	query += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var in model.Ingredient
		if err := rows.Scan(&in.ID, &in.Name, &in.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, in)
	}
	return ingredients, rows.Err()
}

func (r *Repository) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	in := &model.Ingredient{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		"SELECT id, name, measurement_unit FROM ingredients WHERE id = ?"), id).
		Scan(&in.ID, &in.Name, &in.MeasurementUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ingredient: %w", err)
	}
	return in, nil
}

// MissingIngredientIDs returns the ids that do not name a stored ingredient.
func (r *Repository) MissingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return r.missingIDs(ctx, "ingredients", ids)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
