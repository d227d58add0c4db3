package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vkotlyarov/skillboard/internal/handlers/authctx"
	"github.com/vkotlyarov/skillboard/internal/handlers/render"
	"github.com/vkotlyarov/skillboard/internal/models"
	"github.com/vkotlyarov/skillboard/internal/service/auth"
)

type accessVerifier interface {
	VerifyAccess(ctx context.Context, access string) (auth.Identity, error)
}

// AuthMiddleware guards protected routes.
//
// A missing credential is 401, a presented but bad one is 403. Clients
// rely on the split: 401 means log in, 403 means refresh and retry.
func AuthMiddleware(verifier accessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			identity, err := verifier.VerifyAccess(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Invalid or expired credential", http.StatusForbidden)
				return
			}

			ctx := authctx.New(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non admin identities. Must run after AuthMiddleware
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		if identity.Role != models.RoleAdmin {
			render.AuthorizationError(w, "Admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}
