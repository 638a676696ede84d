package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"edumate/internal/auth"
	"edumate/internal/constants"
	"edumate/internal/db"
)

type contextKey string

const accountIDKey contextKey = "accountID"

type AuthMiddleware struct {
	jwtService *auth.JWTService
	accounts   *db.AccountRepository
}

func NewAuthMiddleware(jwtService *auth.JWTService, accounts *db.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, accounts: accounts}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, claims.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireProfile gates features that personalize output on a completed
// profile. Runs after RequireAuth.
func (m *AuthMiddleware) RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := GetAccountID(r)
		if accountID == "" {
			unauthorized(w, "Account not found in context")
			return
		}

		account, err := m.accounts.FindByID(r.Context(), accountID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				unauthorized(w, "Account no longer exists")
				return
			}
			slog.Error("error loading account for profile gate", "error", err)
			internalError(w)
			return
		}

		if !account.ProfileComplete {
			writeError(w, http.StatusForbidden, constants.ErrCodeProfileRequired,
				"Complete your profile before using this feature")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func GetAccountID(r *http.Request) string {
	if v := r.Context().Value(accountIDKey); v != nil {
		if accountID, ok := v.(string); ok {
			return accountID
		}
	}
	return ""
}
