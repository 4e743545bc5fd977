package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"usermgmt/internal/auth"
	"usermgmt/internal/http/respond"
	"usermgmt/internal/storage"
)

// TokenParser validates a raw bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token id has been invalidated.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticate validates the bearer token on each request, rejects revoked
// tokens, resolves the subject against the user store, and stashes the
// resulting identity in the request context. Subjects without a stored
// record are rejected.
func Authenticate(tokens TokenParser, revoked RevocationChecker, store storage.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				log.Printf("authenticate: revocation check failed: %v", err)
				respond.Error(w, http.StatusInternalServerError, "failed to verify token")
				return
			}
			if isRevoked {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			user, err := store.FindByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					log.Printf("authenticate: fetch caller %d failed: %v", userID, err)
				}
				respond.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{User: user, Claims: claims})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("bearer "):])
	return token, token != ""
}
