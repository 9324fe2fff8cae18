// Package seed loads the reference catalog (ingredients and tags) and test
// users into the store.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
)

// Store is the subset of the repository the seeder writes through.
type Store interface {
	CreateIngredient(ctx context.Context, in *model.Ingredient) error
	CreateTag(ctx context.Context, t *model.Tag) error
	CreateUser(ctx context.Context, u *model.User) error
}

// Result counts rows written and rows that already existed.
type Result struct {
	Created int
	Skipped int
}

// Ingredients reads a JSON array of {"name", "measurement_unit"} objects.
// Rows that already exist are skipped, so the load can be rerun.
func Ingredients(ctx context.Context, store Store, r io.Reader) (Result, error) {
	var items []model.Ingredient
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return Result{}, fmt.Errorf("decode ingredients: %w", err)
	}

	var res Result
	for i := range items {
		in := items[i]
		in.ID = 0
		if err := countInsert(&res, store.CreateIngredient(ctx, &in)); err != nil {
			return res, fmt.Errorf("ingredient %q: %w", in.Name, err)
		}
	}
	return res, nil
}

// Tags reads a JSON array of {"name", "slug"} objects.
func Tags(ctx context.Context, store Store, r io.Reader) (Result, error) {
	var items []model.Tag
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return Result{}, fmt.Errorf("decode tags: %w", err)
	}

	var res Result
	for i := range items {
		t := items[i]
		t.ID = 0
		if err := countInsert(&res, store.CreateTag(ctx, &t)); err != nil {
			return res, fmt.Errorf("tag %q: %w", t.Slug, err)
		}
	}
	return res, nil
}

// Users creates one user per username with a fresh auth token. Existing
// usernames are skipped and left out of the returned list.
func Users(ctx context.Context, store Store, usernames []string) ([]model.User, error) {
	var created []model.User
	for _, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		u := model.User{
			Email:     name + "@foodgram.local",
			Username:  name,
			AuthToken: strings.ReplaceAll(uuid.New().String(), "-", ""),
		}
		err := store.CreateUser(ctx, &u)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("user %q: %w", name, err)
		}
		created = append(created, u)
	}
	return created, nil
}

func countInsert(res *Result, err error) error {
	switch {
	case err == nil:
		res.Created++
	case errors.Is(err, repository.ErrConflict):
		res.Skipped++
	default:
		return err
	}
	return nil
}
