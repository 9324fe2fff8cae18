package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/darkodi/foodgram/internal/middleware"
	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/service"
)

type addFunc func(ctx context.Context, userID, recipeID int64) (*model.ShortRecipe, error)
type removeFunc func(ctx context.Context, userID, recipeID int64) error

// POST /api/recipes/{id}/favorite
func (h *Handler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	h.handleAdd(w, r, h.cart.AddFavorite)
}

// DELETE /api/recipes/{id}/favorite
func (h *Handler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.handleRemove(w, r, h.cart.RemoveFavorite)
}

// POST /api/recipes/{id}/shopping_cart
func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	h.handleAdd(w, r, h.cart.AddToCart)
}

// DELETE /api/recipes/{id}/shopping_cart
func (h *Handler) HandleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.handleRemove(w, r, h.cart.RemoveFromCart)
}

// HandleDownloadShoppingCart sends the aggregated shopping list as a text
// attachment
// GET /api/recipes/download_shopping_cart
func (h *Handler) HandleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	u := middleware.CurrentUser(r.Context())
	report, err := h.cart.ShoppingList(r.Context(), u.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": service.ShoppingListFilename(u)}))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request, add addFunc) {
	id, ok := idParam(w, r, "id", "Recipe")
	if !ok {
		return
	}
	short, err := add(r.Context(), middleware.CurrentUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, short)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request, remove removeFunc) {
	id, ok := idParam(w, r, "id", "Recipe")
	if !ok {
		return
	}
	if err := remove(r.Context(), middleware.CurrentUserID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
