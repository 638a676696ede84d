package api

import (
	"errors"
	"log/slog"
	"net/http"

	"edumate/internal/auth"
	"edumate/internal/db"
)

type ProfileHandler struct {
	authService *auth.Service
}

func NewProfileHandler(authService *auth.Service) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

// GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "No profile saved yet")
			return
		}
		slog.Error("error loading profile", "error", err, "account_id", accountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type SaveProfileRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	AcademicYear  int    `json:"academicYear" validate:"required"`
	Course        string `json:"course" validate:"required,max=200"`
	Interests     string `json:"interests" validate:"required,max=1000"`
	Goals         string `json:"goals" validate:"required,max=1000"`
	Hobbies       string `json:"hobbies" validate:"required,max=1000"`
	LearningStyle string `json:"learningStyle" validate:"required,max=200"`
	CurrentSkills string `json:"currentSkills" validate:"required,max=1000"`
}

// PUT /api/v1/profile saves the full profile; partial updates are not a
// thing, the client always submits every field.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	var req SaveProfileRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	profile, err := h.authService.SaveProfile(r.Context(), accountID, auth.ProfileInput{
		Name:          req.Name,
		AcademicYear:  req.AcademicYear,
		Course:        req.Course,
		Interests:     req.Interests,
		Goals:         req.Goals,
		Hobbies:       req.Hobbies,
		LearningStyle: req.LearningStyle,
		CurrentSkills: req.CurrentSkills,
	})
	if err != nil {
		var validationErr *auth.ValidationError
		if errors.As(err, &validationErr) {
			validationFailed(w, validationErr.Reason, validationErr.Fields)
			return
		}
		if errors.Is(err, db.ErrNotFound) {
			notFound(w, "Account not found")
			return
		}
		slog.Error("error saving profile", "error", err, "account_id", accountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
