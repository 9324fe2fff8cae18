package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/metrics"
	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
)

// DefaultMaxAttempts bounds token generation per request.
const DefaultMaxAttempts = 5

// ShortLinkStore is the storage the short link service needs.
type ShortLinkStore interface {
	RecipeExists(ctx context.Context, id int64) (bool, error)
	GetShortURLByFullLink(ctx context.Context, fullLink string) (*model.ShortURL, error)
	GetShortURLByShortLink(ctx context.Context, shortLink string) (*model.ShortURL, error)
	ShortLinkExists(ctx context.Context, shortLink string) (bool, error)
	CreateShortURL(ctx context.Context, u *model.ShortURL) error
}

// TokenGenerator produces candidate tokens and checks their format.
type TokenGenerator interface {
	Generate() (string, error)
	Valid(token string) bool
}

// LinkCache is an optional token to full link cache.
type LinkCache interface {
	GetLink(ctx context.Context, token string) (string, bool, error)
	SetLink(ctx context.Context, token, fullLink string) error
}

// ShortLinkService hands out one short token per recipe and resolves tokens
// back to recipe links.
type ShortLinkService struct {
	store       ShortLinkStore
	gen         TokenGenerator
	cache       LinkCache
	baseURL     string // e.g., "http://localhost:8080"
	maxAttempts int
	log         *logger.Logger
}

// NewShortLinkService creates a new service instance. cache may be nil.
func NewShortLinkService(store ShortLinkStore, gen TokenGenerator, cache LinkCache, baseURL string, maxAttempts int, log *logger.Logger) *ShortLinkService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &ShortLinkService{
		store:       store,
		gen:         gen,
		cache:       cache,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// FullLink is the canonical URL of a recipe.
func (s *ShortLinkService) FullLink(recipeID int64) string {
	return s.baseURL + "/recipes/" + strconv.FormatInt(recipeID, 10)
}

// PublicURL is the shareable URL for a token.
func (s *ShortLinkService) PublicURL(token string) string {
	return s.baseURL + "/s/" + token
}

// GetOrCreate returns the recipe's token, allocating one on first use.
// Repeated calls for the same recipe return the same token.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, recipeID int64) (string, error) {
	ok, err := s.store.RecipeExists(ctx, recipeID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrRecipeNotFound
	}

	fullLink := s.FullLink(recipeID)
	existing, err := s.store.GetShortURLByFullLink(ctx, fullLink)
	if err == nil {
		return existing.ShortLink, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	log := logger.FromContext(ctx, s.log)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		token, err := s.gen.Generate()
		if err != nil {
			return "", err
		}

		taken, err := s.store.ShortLinkExists(ctx, token)
		if err != nil {
			return "", err
		}
		if taken {
			metrics.ShortLinkCollisions.Inc()
			log.Debug("short token taken, retrying", "attempt", attempt, "token", token)
			continue
		}

		err = s.store.CreateShortURL(ctx, &model.ShortURL{FullLink: fullLink, ShortLink: token})
		if err == nil {
			metrics.ShortLinksCreated.Inc()
			log.Info("short link created", "recipe_id", recipeID, "token", token, "attempts", attempt)
			return token, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return "", err
		}

		// Either a concurrent request mapped this recipe first, or someone
		// took the token between the check and the insert.
		if winner, err := s.store.GetShortURLByFullLink(ctx, fullLink); err == nil {
			return winner.ShortLink, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
		metrics.ShortLinkCollisions.Inc()
		log.Debug("short token insert conflicted, retrying", "attempt", attempt, "token", token)
	}

	log.Error("short token space exhausted",
		"recipe_id", recipeID,
		"attempts", s.maxAttempts)
	return "", fmt.Errorf("%w after %d attempts", ErrTokenSpaceExhausted, s.maxAttempts)
}

// Resolve returns the full link for token.
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (string, error) {
	if !s.gen.Valid(token) {
		return "", ErrShortLinkNotFound
	}

	log := logger.FromContext(ctx, s.log)
	if s.cache != nil {
		link, ok, err := s.cache.GetLink(ctx, token)
		switch {
		case err != nil:
			metrics.ShortLinkCacheResults.WithLabelValues("error").Inc()
			log.Warn("short link cache read failed", "error", err.Error())
		case ok:
			metrics.ShortLinkCacheResults.WithLabelValues("hit").Inc()
			return link, nil
		default:
			metrics.ShortLinkCacheResults.WithLabelValues("miss").Inc()
		}
	}

	u, err := s.store.GetShortURLByShortLink(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrShortLinkNotFound
	}
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.SetLink(ctx, token, u.FullLink); err != nil {
			log.Warn("short link cache write failed", "error", err.Error())
		}
	}
	return u.FullLink, nil
}
