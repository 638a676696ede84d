package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"edumate/internal/auth"
	"edumate/internal/constants"
)

type AuthHandler struct {
	authService *auth.Service
	jwtService  *auth.JWTService
}

func NewAuthHandler(authService *auth.Service, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type RegisterResponse struct {
	AccountID string `json:"accountId"`
	Message   string `json:"message"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	accountID, err := h.authService.Register(r.Context(), strings.ToLower(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateAccount) {
			conflict(w, "An account with this email already exists")
			return
		}
		var validationErr *auth.ValidationError
		if errors.As(err, &validationErr) {
			validationFailed(w, validationErr.Reason, validationErr.Fields)
			return
		}
		slog.Error("error registering account", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		AccountID: accountID,
		Message:   "Account created successfully",
	})
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,max=254"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type AuthResponse struct {
	Session       *auth.Session `json:"session"`
	AccessToken   string        `json:"accessToken"`
	ExpiresAt     string        `json:"expiresAt"`
	RememberToken string        `json:"rememberToken,omitempty"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	session, err := h.authService.Login(r.Context(), strings.ToLower(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, constants.ErrCodeAuthFailed, "Invalid email or password")
			return
		}
		slog.Error("error logging in", "error", err)
		internalError(w)
		return
	}

	resp, err := h.buildAuthResponse(session)
	if err != nil {
		slog.Error("error issuing access token", "error", err, "account_id", session.AccountID)
		internalError(w)
		return
	}

	if req.RememberMe {
		rememberToken, err := h.authService.IssueRememberToken(r.Context(), session.AccountID)
		if err != nil {
			slog.Error("error issuing remember token", "error", err, "account_id", session.AccountID)
			internalError(w)
			return
		}
		resp.RememberToken = rememberToken
	}

	writeJSON(w, http.StatusOK, resp)
}

type RememberRequest struct {
	RememberToken string `json:"rememberToken" validate:"required"`
}

// POST /api/v1/auth/remember silently re-authenticates a returning client. A
// stale token is a normal outcome: the client falls back to the login form.
func (h *AuthHandler) Remember(w http.ResponseWriter, r *http.Request) {
	var req RememberRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	session, err := h.authService.ValidateRememberToken(r.Context(), req.RememberToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, constants.ErrCodeAuthExpired, "Remember token is invalid or expired")
			return
		}
		slog.Error("error validating remember token", "error", err)
		internalError(w)
		return
	}

	resp, err := h.buildAuthResponse(session)
	if err != nil {
		slog.Error("error issuing access token", "error", err, "account_id", session.AccountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	if err := h.authService.Logout(r.Context(), accountID); err != nil {
		slog.Error("error logging out", "error", err, "account_id", accountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) buildAuthResponse(session *auth.Session) (*AuthResponse, error) {
	accessToken, expiresAt, err := h.jwtService.GenerateAccessToken(session.AccountID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Session:     session,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}
