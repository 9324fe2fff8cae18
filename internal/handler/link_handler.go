package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/darkodi/foodgram/internal/model"
)

// HandleGetLink returns the recipe's short link, allocating it on first use
// GET /api/recipes/{id}/get-link
func (h *Handler) HandleGetLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Recipe")
	if !ok {
		return
	}
	token, err := h.links.GetOrCreate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ShortLinkResponse{ShortLink: h.links.PublicURL(token)})
}

// HandleRedirect sends the client to the recipe behind a token
// GET /s/{token}
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	full, err := h.links.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, full, http.StatusFound)
}
