package service

import (
	"context"
	"errors"

	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
)

// CatalogService serves the read-only tag and ingredient lists
type CatalogService struct {
	repo *repository.Repository
}

// NewCatalogService creates a new service instance
func NewCatalogService(repo *repository.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Tags(ctx context.Context) ([]model.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *CatalogService) Tag(ctx context.Context, id int64) (*model.Tag, error) {
	t, err := s.repo.GetTag(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTagNotFound
	}
	return t, err
}

// Ingredients lists ingredients whose name starts with prefix.
func (s *CatalogService) Ingredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	return s.repo.SearchIngredients(ctx, prefix)
}

func (s *CatalogService) Ingredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	in, err := s.repo.GetIngredient(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrIngredientNotFound
	}
	return in, err
}
