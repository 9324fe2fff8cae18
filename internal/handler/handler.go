package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/darkodi/foodgram/internal/errors"
	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/service"
)

// Handler serves the HTTP API on top of the service layer
type Handler struct {
	recipes *service.RecipeService
	catalog *service.CatalogService
	cart    *service.CartService
	users   *service.UserService
	links   *service.ShortLinkService
	db      Pinger
	log     *logger.Logger
}

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the dependencies of Handler
type Services struct {
	Recipes *service.RecipeService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Users   *service.UserService
	Links   *service.ShortLinkService
	DB      Pinger // optional
}

// New creates a new handler instance
func New(svc Services, log *logger.Logger) *Handler {
	return &Handler{
		recipes: svc.Recipes,
		catalog: svc.Catalog,
		cart:    svc.Cart,
		users:   svc.Users,
		links:   svc.Links,
		db:      svc.DB,
		log:     log,
	}
}

// ============================================================
// RESPONSE HELPERS
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto API errors. Anything unrecognised is
// logged and reported as a 500 without details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		appErr.WriteJSON(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		apperrors.NotFound("Recipe").WriteJSON(w)
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound("User").WriteJSON(w)
	case errors.Is(err, service.ErrTagNotFound):
		apperrors.NotFound("Tag").WriteJSON(w)
	case errors.Is(err, service.ErrIngredientNotFound):
		apperrors.NotFound("Ingredient").WriteJSON(w)
	case errors.Is(err, service.ErrShortLinkNotFound):
		apperrors.ShortLinkNotFound(chi.URLParam(r, "token")).WriteJSON(w)

	case errors.Is(err, service.ErrNotAuthor):
		apperrors.Forbidden("Only the author can change this recipe").WriteJSON(w)

	case errors.Is(err, service.ErrAlreadyFavorited):
		apperrors.AlreadyExists("Favorite").WriteJSON(w)
	case errors.Is(err, service.ErrAlreadyInCart):
		apperrors.AlreadyExists("Shopping cart entry").WriteJSON(w)
	case errors.Is(err, service.ErrAlreadySubscribed):
		apperrors.AlreadyExists("Subscription").WriteJSON(w)
	case errors.Is(err, service.ErrNotFavorited):
		apperrors.NotPresent("Favorite").WriteJSON(w)
	case errors.Is(err, service.ErrNotInCart):
		apperrors.NotPresent("Shopping cart entry").WriteJSON(w)
	case errors.Is(err, service.ErrNotSubscribed):
		apperrors.NotPresent("Subscription").WriteJSON(w)
	case errors.Is(err, service.ErrSelfSubscription):
		apperrors.BadRequest("You cannot subscribe to yourself").WriteJSON(w)

	case errors.Is(err, service.ErrTokenSpaceExhausted):
		logger.FromContext(r.Context(), h.log).Error("short link allocation failed", "error", err.Error())
		apperrors.TokenSpaceExhausted().WriteJSON(w)

	default:
		logger.FromContext(r.Context(), h.log).Error("request failed",
			"path", r.URL.Path,
			"error", err.Error())
		apperrors.Internal("").WriteJSON(w)
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		apperrors.InvalidJSON(err.Error()).WriteJSON(w)
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter. A malformed id is
// reported as the resource not existing.
func idParam(w http.ResponseWriter, r *http.Request, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		apperrors.NotFound(resource).WriteJSON(w)
		return 0, false
	}
	return id, true
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		apperrors.Validation(map[string]string{name: "must be a non-negative integer"}).WriteJSON(w)
		return 0, false
	}
	return n, true
}

// HandleHealth returns service health status
// GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			logger.FromContext(r.Context(), h.log).Error("health check failed", "error", err.Error())
			appErr := apperrors.DatabaseError()
			appErr.StatusCode = http.StatusServiceUnavailable
			appErr.WriteJSON(w)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
