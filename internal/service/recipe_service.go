package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/darkodi/foodgram/internal/errors"
	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/metrics"
	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
	"github.com/darkodi/foodgram/internal/validator"
)

// RecipeService handles recipe writes, reads and per-viewer presentation
type RecipeService struct {
	repo      *repository.Repository
	users     *UserService
	validator *validator.Validator
	log       *logger.Logger
}

// NewRecipeService creates a new service instance
func NewRecipeService(repo *repository.Repository, users *UserService, log *logger.Logger) *RecipeService {
	return &RecipeService{
		repo:      repo,
		users:     users,
		validator: validator.New(),
		log:       log,
	}
}

// Create validates req and stores a new recipe owned by authorID.
// Nothing is written unless every check passes.
func (s *RecipeService) Create(ctx context.Context, authorID int64, req model.RecipeWrite) (*model.Recipe, error) {
	if err := s.validate(ctx, &req); err != nil {
		metrics.RecipeWrites.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}

	rec := &model.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
	}
	if err := s.repo.CreateRecipe(ctx, rec, req.Tags, req.Ingredients); err != nil {
		metrics.RecipeWrites.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	metrics.RecipeWrites.WithLabelValues("create", "ok").Inc()

	logger.FromContext(ctx, s.log).Info("recipe created",
		"recipe_id", rec.ID,
		"author_id", authorID,
		"tags", len(req.Tags),
		"ingredients", len(req.Ingredients))

	return s.Get(ctx, rec.ID)
}

// Update replaces the recipe's fields, tag set and ingredient lines.
// Only the author may update.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID int64, req model.RecipeWrite) (*model.Recipe, error) {
	existing, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	if err := s.validate(ctx, &req); err != nil {
		metrics.RecipeWrites.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}

	existing.Name = req.Name
	existing.Text = req.Text
	existing.Image = req.Image
	existing.CookingTime = req.CookingTime

	err = s.repo.UpdateRecipe(ctx, existing, req.Tags, req.Ingredients)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		metrics.RecipeWrites.WithLabelValues("update", "error").Inc()
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	metrics.RecipeWrites.WithLabelValues("update", "ok").Inc()

	return s.Get(ctx, recipeID)
}

// Delete removes a recipe. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	existing, err := s.Get(ctx, recipeID)
	if err != nil {
		return err
	}
	if existing.AuthorID != userID {
		return ErrNotAuthor
	}
	err = s.repo.DeleteRecipe(ctx, recipeID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecipeNotFound
	}
	return err
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	rec, err := s.repo.GetRecipe(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecipeNotFound
	}
	return rec, err
}

func (s *RecipeService) List(ctx context.Context, f model.RecipeFilter) ([]model.Recipe, error) {
	return s.repo.ListRecipes(ctx, f)
}

// Present builds the response for viewerID (0 for anonymous). The
// favorite and cart flags are looked up per viewer, never stored.
func (s *RecipeService) Present(ctx context.Context, viewerID int64, rec *model.Recipe) (*model.RecipeResponse, error) {
	author, err := s.users.Get(ctx, rec.AuthorID)
	if err != nil {
		return nil, err
	}
	authorResp, err := s.users.Present(ctx, viewerID, author)
	if err != nil {
		return nil, err
	}

	resp := &model.RecipeResponse{
		ID:          rec.ID,
		Tags:        rec.Tags,
		Author:      authorResp,
		Ingredients: rec.Ingredients,
		Name:        rec.Name,
		Image:       rec.Image,
		Text:        rec.Text,
		CookingTime: rec.CookingTime,
	}
	if viewerID == 0 {
		return resp, nil
	}

	if resp.IsFavorited, err = s.repo.IsFavorited(ctx, viewerID, rec.ID); err != nil {
		return nil, err
	}
	if resp.IsInShoppingCart, err = s.repo.IsInCart(ctx, viewerID, rec.ID); err != nil {
		return nil, err
	}
	return resp, nil
}

// PresentAll presents each recipe for viewerID.
func (s *RecipeService) PresentAll(ctx context.Context, viewerID int64, recipes []model.Recipe) ([]model.RecipeResponse, error) {
	result := make([]model.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := s.Present(ctx, viewerID, &recipes[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// validate runs the struct checks, then confirms every referenced tag and
// ingredient exists.
func (s *RecipeService) validate(ctx context.Context, req *model.RecipeWrite) error {
	if appErr := s.validator.Struct(req); appErr != nil {
		return appErr
	}

	fields := make(map[string]string)

	missingTags, err := s.repo.MissingTagIDs(ctx, req.Tags)
	if err != nil {
		return err
	}
	if len(missingTags) > 0 {
		fields["tags"] = "unknown tag ids: " + joinIDs(missingTags)
	}

	ingredientIDs := make([]int64, len(req.Ingredients))
	for i, in := range req.Ingredients {
		ingredientIDs[i] = in.ID
	}
	missingIngredients, err := s.repo.MissingIngredientIDs(ctx, ingredientIDs)
	if err != nil {
		return err
	}
	if len(missingIngredients) > 0 {
		fields["ingredients"] = "unknown ingredient ids: " + joinIDs(missingIngredients)
	}

	if len(fields) > 0 {
		return apperrors.Validation(fields)
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
