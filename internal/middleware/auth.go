package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/model"
)

// UserGetter loads an account by ID. Satisfied by repository.UserRepository.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type contextKey struct{}

var userClaimsKey = contextKey{}

// ClaimsFromContext returns the access claims stored by RequireAuth or
// OptionalAuth, if any.
func ClaimsFromContext(ctx context.Context) (*auth.AccessClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*auth.AccessClaims)
	return claims, ok
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(jwtAuth *auth.JWTAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidateToken(r, jwtAuth)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "not authorized to access this route")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userClaimsKey, claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and
// lets the request through unauthenticated otherwise.
func OptionalAuth(jwtAuth *auth.JWTAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := extractAndValidateToken(r, jwtAuth); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userClaimsKey, claims))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerifiedEmail rejects authenticated requests whose account has
// not verified its email address. It must run after RequireAuth.
func RequireVerifiedEmail(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "not authorized to access this route")
				return
			}

			user, err := users.GetUser(r.Context(), claims.Subject)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "not authorized to access this route")
				return
			}

			if !user.EmailVerified {
				writeAuthError(w, http.StatusForbidden, "email address must be verified to access this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractAndValidateToken(r *http.Request, jwtAuth *auth.JWTAuthenticator) (*auth.AccessClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("invalid authorization header format")
	}

	return jwtAuth.ValidateAccessToken(parts[1])
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
