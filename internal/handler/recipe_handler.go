package handler

import (
	"net/http"

	"github.com/darkodi/foodgram/internal/middleware"
	"github.com/darkodi/foodgram/internal/model"
)

// HandleListRecipes lists recipes newest first
// GET /api/recipes?author=&tags=&is_favorited=&is_in_shopping_cart=&limit=
func (h *Handler) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	viewerID := middleware.CurrentUserID(r.Context())

	var f model.RecipeFilter
	author, ok := intQuery(w, r, "author")
	if !ok {
		return
	}
	f.AuthorID = int64(author)
	if f.Limit, ok = intQuery(w, r, "limit"); !ok {
		return
	}
	f.TagSlugs = q["tags"]

	// Viewer filters mean nothing to anonymous callers, so they match nothing.
	if q.Get("is_favorited") == "1" {
		if viewerID == 0 {
			writeJSON(w, http.StatusOK, []model.RecipeResponse{})
			return
		}
		f.FavoritedBy = viewerID
	}
	if q.Get("is_in_shopping_cart") == "1" {
		if viewerID == 0 {
			writeJSON(w, http.StatusOK, []model.RecipeResponse{})
			return
		}
		f.InShoppingCartOf = viewerID
	}

	recipes, err := h.recipes.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.recipes.PresentAll(r.Context(), viewerID, recipes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetRecipe returns one recipe
// GET /api/recipes/{id}
func (h *Handler) HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Recipe")
	if !ok {
		return
	}
	rec, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeRecipe(w, r, http.StatusOK, rec)
}

// HandleCreateRecipe creates a recipe owned by the caller
// POST /api/recipes
func (h *Handler) HandleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req model.RecipeWrite
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.recipes.Create(r.Context(), middleware.CurrentUserID(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeRecipe(w, r, http.StatusCreated, rec)
}

// HandleUpdateRecipe replaces a recipe's fields, tags and ingredients
// PATCH /api/recipes/{id}
func (h *Handler) HandleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Recipe")
	if !ok {
		return
	}
	var req model.RecipeWrite
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.recipes.Update(r.Context(), middleware.CurrentUserID(r.Context()), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeRecipe(w, r, http.StatusOK, rec)
}

// HandleDeleteRecipe deletes a recipe
// DELETE /api/recipes/{id}
func (h *Handler) HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Recipe")
	if !ok {
		return
	}
	if err := h.recipes.Delete(r.Context(), middleware.CurrentUserID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRecipe(w http.ResponseWriter, r *http.Request, status int, rec *model.Recipe) {
	resp, err := h.recipes.Present(r.Context(), middleware.CurrentUserID(r.Context()), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, resp)
}
