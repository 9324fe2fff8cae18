package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/darkodi/foodgram/internal/model"
)

const recipeColumns = "r.id, r.author_id, r.name, r.text, r.image, r.cooking_time, r.created_at"

// CreateRecipe inserts the recipe row, its tags and its ingredient lines in
// one transaction and sets rec.ID.
func (r *Repository) CreateRecipe(ctx context.Context, rec *model.Recipe, tagIDs []int64, lines []model.IngredientAmount) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, r.rebind(`
            INSERT INTO recipes (author_id, name, text, image, cooking_time)
            VALUES (?, ?, ?, ?, ?) RETURNING id`),
			rec.AuthorID, rec.Name, rec.Text, rec.Image, rec.CookingTime,
		).Scan(&rec.ID)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return r.insertRelations(ctx, tx, rec.ID, tagIDs, lines)
	})
}

// UpdateRecipe rewrites the scalar fields and fully replaces the tag set and
// ingredient lines. Either everything is written or nothing is.
func (r *Repository) UpdateRecipe(ctx context.Context, rec *model.Recipe, tagIDs []int64, lines []model.IngredientAmount) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.rebind(`
            UPDATE recipes SET name = ?, text = ?, image = ?, cooking_time = ?
            WHERE id = ?`),
			rec.Name, rec.Text, rec.Image, rec.CookingTime, rec.ID,
		)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, r.rebind("DELETE FROM recipe_tags WHERE recipe_id = ?"), rec.ID); err != nil {
			return fmt.Errorf("delete recipe_tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, r.rebind("DELETE FROM recipe_ingredients WHERE recipe_id = ?"), rec.ID); err != nil {
			return fmt.Errorf("delete recipe_ingredients: %w", err)
		}
		return r.insertRelations(ctx, tx, rec.ID, tagIDs, lines)
	})
}

// insertRelations bulk-inserts tag and ingredient rows for one recipe.
func (r *Repository) insertRelations(ctx context.Context, tx *sql.Tx, recipeID int64, tagIDs []int64, lines []model.IngredientAmount) error {
	if len(tagIDs) > 0 {
		values := make([]string, len(tagIDs))
		args := make([]any, 0, 2*len(tagIDs))
		for i, tagID := range tagIDs {
			values[i] = "(?, ?)"
			args = append(args, recipeID, tagID)
		}
		query := "INSERT INTO recipe_tags (recipe_id, tag_id) VALUES " + strings.Join(values, ", ")
		if _, err := tx.ExecContext(ctx, r.rebind(query), args...); err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("insert recipe_tags: %w", err)
		}
	}

	if len(lines) > 0 {
		values := make([]string, len(lines))
		args := make([]any, 0, 3*len(lines))
		for i, line := range lines {
			values[i] = "(?, ?, ?)"
			args = append(args, recipeID, line.ID, line.Amount)
		}
		query := "INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES " + strings.Join(values, ", ")
		if _, err := tx.ExecContext(ctx, r.rebind(query), args...); err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("insert recipe_ingredients: %w", err)
		}
	}

	return nil
}

func (r *Repository) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.rebind("DELETE FROM recipes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRecipe loads one recipe with its tags and ingredient lines.
func (r *Repository) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	rec := &model.Recipe{}
	err := r.db.QueryRowContext(ctx, r.rebind("SELECT "+recipeColumns+" FROM recipes r WHERE r.id = ?"), id).
		Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Text, &rec.Image, &rec.CookingTime, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}

	recipes := []model.Recipe{*rec}
	if err := r.loadRelations(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

func (r *Repository) RecipeExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM recipes WHERE id = ?", id)
}

// ListRecipes returns recipes matching f, newest first, with relations loaded.
func (r *Repository) ListRecipes(ctx context.Context, f model.RecipeFilter) ([]model.Recipe, error) {
	var (
		where []string
		args  []any
	)
	if f.AuthorID != 0 {
		where = append(where, "r.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		where = append(where, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
            WHERE rt.recipe_id = r.id AND t.slug IN (%s))`, placeholders(len(f.TagSlugs))))
		for _, slug := range f.TagSlugs {
			args = append(args, slug)
		}
	}
	if f.FavoritedBy != 0 {
		where = append(where, "EXISTS (SELECT 1 FROM favorites fv WHERE fv.recipe_id = r.id AND fv.user_id = ?)")
		args = append(args, f.FavoritedBy)
	}
	if f.InShoppingCartOf != 0 {
		where = append(where, "EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = ?)")
		args = append(args, f.InShoppingCartOf)
	}

	query := "SELECT " + recipeColumns + " FROM recipes r"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []model.Recipe{}
	for rows.Next() {
		var rec model.Recipe
		if err := rows.Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Text, &rec.Image, &rec.CookingTime, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadRelations(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *Repository) CountRecipesByAuthor(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.rebind("SELECT COUNT(*) FROM recipes WHERE author_id = ?"), authorID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

// loadRelations fills Tags and Ingredients for every recipe in place.
func (r *Repository) loadRelations(ctx context.Context, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = i
		recipes[i].Tags = []model.Tag{}
		recipes[i].Ingredients = []model.IngredientLine{}
	}
	in := placeholders(len(ids))

	tagRows, err := r.db.QueryContext(ctx, r.rebind(`
        SELECT rt.recipe_id, t.id, t.name, t.slug
        FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
        WHERE rt.recipe_id IN (`+in+`)
        ORDER BY t.name, t.id`), int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("query recipe tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var (
			recipeID int64
			t        model.Tag
		)
		if err := tagRows.Scan(&recipeID, &t.ID, &t.Name, &t.Slug); err != nil {
			return fmt.Errorf("scan recipe tag: %w", err)
		}
		i := index[recipeID]
		recipes[i].Tags = append(recipes[i].Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return err
	}

	lines, err := r.queryLines(ctx, `
        SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
        FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id
        WHERE ri.recipe_id IN (`+in+`)
        ORDER BY i.name, i.id`, int64Args(ids)...)
	if err != nil {
		return err
	}
	for _, line := range lines {
		i := index[line.RecipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, line)
	}
	return nil
}

// CartIngredientLines returns every ingredient line of every recipe in the
// user's shopping cart.
func (r *Repository) CartIngredientLines(ctx context.Context, userID int64) ([]model.IngredientLine, error) {
	return r.queryLines(ctx, `
        SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
        FROM shopping_cart sc
        JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
        JOIN ingredients i ON i.id = ri.ingredient_id
        WHERE sc.user_id = ?`, userID)
}

func (r *Repository) queryLines(ctx context.Context, query string, args ...any) ([]model.IngredientLine, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query ingredient lines: %w", err)
	}
	defer rows.Close()

	var lines []model.IngredientLine
	for rows.Next() {
		var l model.IngredientLine
		if err := rows.Scan(&l.RecipeID, &l.IngredientID, &l.Name, &l.MeasurementUnit, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan ingredient line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
