package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/kirillkom/smartdocs/internal/core/domain"
	"github.com/kirillkom/smartdocs/internal/core/ports"
)

type currentUserContextKey struct{}

func userFromContext(ctx context.Context) *domain.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(currentUserContextKey{}).(*domain.User)
	return user
}

// requireUser resolves the bearer token and invokes next with the
// authenticated user stored in the request context.
func requireUser(auth ports.AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
			return
		}

		user, err := auth.CurrentUser(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey{}, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
