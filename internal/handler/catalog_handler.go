package handler

import (
	"net/http"
)

// GET /api/tags
func (h *Handler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.Tags(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// GET /api/tags/{id}
func (h *Handler) HandleGetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Tag")
	if !ok {
		return
	}
	tag, err := h.catalog.Tag(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HandleListIngredients searches by name prefix
// GET /api/ingredients?name=
func (h *Handler) HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// GET /api/ingredients/{id}
func (h *Handler) HandleGetIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Ingredient")
	if !ok {
		return
	}
	in, err := h.catalog.Ingredient(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}
