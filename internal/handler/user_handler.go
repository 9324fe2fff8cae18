package handler

import (
	"net/http"

	"github.com/darkodi/foodgram/internal/middleware"
)

// GET /api/users/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u := middleware.CurrentUser(r.Context())
	resp, err := h.users.Present(r.Context(), u.ID, u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/users/{id}
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "User")
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.users.Present(r.Context(), middleware.CurrentUserID(r.Context()), u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSubscribe follows an author
// POST /api/users/{id}/subscribe?recipes_limit=
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "User")
	if !ok {
		return
	}
	limit, ok := intQuery(w, r, "recipes_limit")
	if !ok {
		return
	}
	sub, err := h.users.Subscribe(r.Context(), middleware.CurrentUserID(r.Context()), id, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// DELETE /api/users/{id}/subscribe
func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "User")
	if !ok {
		return
	}
	if err := h.users.Unsubscribe(r.Context(), middleware.CurrentUserID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubscriptions lists followed authors with their recipes
// GET /api/users/subscriptions?recipes_limit=
func (h *Handler) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "recipes_limit")
	if !ok {
		return
	}
	subs, err := h.users.Subscriptions(r.Context(), middleware.CurrentUserID(r.Context()), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}
