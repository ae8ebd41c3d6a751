package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/notehub/notehub-go/internal/crypto"
	"github.com/notehub/notehub-go/internal/model"
	"github.com/notehub/notehub-go/internal/repository"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver looks up a live user record for a token's subject.
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Authenticate returns middleware that validates a Bearer token from the
// Authorization header, resolves its subject to a live user and attaches
// the user to the request context. Tokens for deleted accounts fail even
// though the signature still checks out.
func Authenticate(secret string, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					writeJSONError(w, http.StatusUnauthorized, "user no longer exists")
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified rejects authenticated but unverified users. It must run
// after Authenticate.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !user.IsVerified {
			writeJSONError(w, http.StatusForbidden, "please verify your email first")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
