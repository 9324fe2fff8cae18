package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/darkodi/foodgram/internal/errors"
	"github.com/darkodi/foodgram/internal/middleware"
)

// Routes builds the router. auth resolves the Authorization header on
// every API request; metrics may be nil.
func (h *Handler) Routes(auth middleware.Authenticator, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	// Logging sits inside the router so the matched route pattern is
	// visible to it once the handler returns.
	r.Use(middleware.LoggingWithLogger(h.log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.NotFound("Resource").WriteJSON(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.MethodNotAllowed(r.Method).WriteJSON(w)
	})

	r.Get("/health", h.HandleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.Get("/s/{token}", h.HandleRedirect)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(auth, h.log))

		r.Get("/tags", h.HandleListTags)
		r.Get("/tags/{id}", h.HandleGetTag)
		r.Get("/ingredients", h.HandleListIngredients)
		r.Get("/ingredients/{id}", h.HandleGetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.HandleListRecipes)
			r.Get("/{id}", h.HandleGetRecipe)
			r.Get("/{id}/get-link", h.HandleGetLink)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", h.HandleCreateRecipe)
				r.Patch("/{id}", h.HandleUpdateRecipe)
				r.Delete("/{id}", h.HandleDeleteRecipe)

				r.Post("/{id}/favorite", h.HandleAddFavorite)
				r.Delete("/{id}/favorite", h.HandleRemoveFavorite)
				r.Post("/{id}/shopping_cart", h.HandleAddToCart)
				r.Delete("/{id}/shopping_cart", h.HandleRemoveFromCart)
				r.Get("/download_shopping_cart", h.HandleDownloadShoppingCart)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", h.HandleGetUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", h.HandleMe)
				r.Get("/subscriptions", h.HandleSubscriptions)
				r.Post("/{id}/subscribe", h.HandleSubscribe)
				r.Delete("/{id}/subscribe", h.HandleUnsubscribe)
			})
		})
	})

	return r
}
