package service

import (
	"context"
	"errors"

	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
)

// UserService handles user lookups and subscriptions
type UserService struct {
	repo *repository.Repository
}

// NewUserService creates a new service instance
func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// Authenticate resolves an auth token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	u, err := s.repo.GetUserByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Present builds the public view of u for viewerID. viewerID 0 is anonymous.
func (s *UserService) Present(ctx context.Context, viewerID int64, u *model.User) (model.UserResponse, error) {
	resp := model.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if viewerID == 0 || viewerID == u.ID {
		return resp, nil
	}
	subscribed, err := s.repo.IsSubscribed(ctx, viewerID, u.ID)
	if err != nil {
		return resp, err
	}
	resp.IsSubscribed = subscribed
	return resp, nil
}

// Subscribe makes userID follow authorID and returns the author's
// subscription view.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.SubscriptionResponse, error) {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	err = s.repo.Subscribe(ctx, userID, authorID)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrAlreadySubscribed
	}
	if err != nil {
		return nil, err
	}

	return s.presentSubscription(ctx, userID, author, recipesLimit)
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.Get(ctx, authorID); err != nil {
		return err
	}
	err := s.repo.Unsubscribe(ctx, userID, authorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotSubscribed
	}
	return err
}

// Subscriptions lists the authors userID follows with up to recipesLimit
// recipes each. recipesLimit <= 0 means no limit.
func (s *UserService) Subscriptions(ctx context.Context, userID int64, recipesLimit int) ([]model.SubscriptionResponse, error) {
	authors, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]model.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := s.presentSubscription(ctx, userID, &authors[i], recipesLimit)
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	return result, nil
}

func (s *UserService) presentSubscription(ctx context.Context, viewerID int64, author *model.User, recipesLimit int) (*model.SubscriptionResponse, error) {
	userResp, err := s.Present(ctx, viewerID, author)
	if err != nil {
		return nil, err
	}

	recipes, err := s.repo.ListRecipes(ctx, model.RecipeFilter{AuthorID: author.ID, Limit: recipesLimit})
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	short := make([]model.ShortRecipe, len(recipes))
	for i := range recipes {
		short[i] = recipes[i].Short()
	}
	return &model.SubscriptionResponse{
		UserResponse: userResp,
		Recipes:      short,
		RecipesCount: count,
	}, nil
}
