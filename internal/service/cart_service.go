package service

import (
	"context"
	"errors"

	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
)

// CartService manages favorites and the shopping cart, and builds the
// shopping list from the cart.
type CartService struct {
	repo *repository.Repository
}

// NewCartService creates a new service instance
func NewCartService(repo *repository.Repository) *CartService {
	return &CartService{repo: repo}
}

// AddFavorite marks the recipe as a favorite of userID.
func (s *CartService) AddFavorite(ctx context.Context, userID, recipeID int64) (*model.ShortRecipe, error) {
	return s.add(ctx, recipeID, ErrAlreadyFavorited, func() error {
		return s.repo.AddFavorite(ctx, userID, recipeID)
	})
}

func (s *CartService) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return s.remove(ctx, recipeID, ErrNotFavorited, func() error {
		return s.repo.RemoveFavorite(ctx, userID, recipeID)
	})
}

// AddToCart puts the recipe into userID's shopping cart.
func (s *CartService) AddToCart(ctx context.Context, userID, recipeID int64) (*model.ShortRecipe, error) {
	return s.add(ctx, recipeID, ErrAlreadyInCart, func() error {
		return s.repo.AddToCart(ctx, userID, recipeID)
	})
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return s.remove(ctx, recipeID, ErrNotInCart, func() error {
		return s.repo.RemoveFromCart(ctx, userID, recipeID)
	})
}

// ShoppingList aggregates the ingredient lines of every recipe in the cart
// into the plain text report. An empty cart gives an empty report.
func (s *CartService) ShoppingList(ctx context.Context, userID int64) (string, error) {
	lines, err := s.repo.CartIngredientLines(ctx, userID)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(AggregateIngredients(lines)), nil
}

// ShoppingListFilename names the download after its owner.
func ShoppingListFilename(u *model.User) string {
	return "shopping_list_" + u.Username + ".txt"
}

func (s *CartService) add(ctx context.Context, recipeID int64, dup error, insert func() error) (*model.ShortRecipe, error) {
	rec, err := s.repo.GetRecipe(ctx, recipeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}

	err = insert()
	if errors.Is(err, repository.ErrConflict) {
		return nil, dup
	}
	if err != nil {
		return nil, err
	}

	short := rec.Short()
	return &short, nil
}

func (s *CartService) remove(ctx context.Context, recipeID int64, absent error, del func() error) error {
	ok, err := s.repo.RecipeExists(ctx, recipeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRecipeNotFound
	}

	err = del()
	if errors.Is(err, repository.ErrNotFound) {
		return absent
	}
	return err
}
