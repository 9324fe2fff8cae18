package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/darkodi/foodgram/internal/errors"
	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/service"
)

// Authenticator resolves an auth token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type userKey struct{}

// Authenticate reads "Authorization: Token <key>" and stores the user in
// the request context. Requests without the header continue anonymously;
// a header naming an unknown token is rejected with 401.
func Authenticate(auth Authenticator, log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Token") || token == "" {
				apperrors.Unauthorized().WriteJSON(w)
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUserNotFound) {
					logger.FromContext(r.Context(), log).Error("authenticate", "error", err.Error())
				}
				apperrors.Unauthorized().WriteJSON(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			apperrors.Unauthorized().WriteJSON(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey{}).(*model.User)
	return u
}

// CurrentUserID returns the authenticated user's id, or 0.
func CurrentUserID(ctx context.Context) int64 {
	if u := CurrentUser(ctx); u != nil {
		return u.ID
	}
	return 0
}

// WithUser returns ctx carrying u. Used by tests and internal callers that
// bypass the header.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}
