package api

import (
	"errors"
	"log/slog"
	"net/http"

	"edumate/internal/ai"
	"edumate/internal/constants"
	"edumate/internal/models"
	"edumate/internal/study"
)

type StudyHandler struct {
	planner    *study.Planner
	flashcards *study.Flashcards
}

func NewStudyHandler(planner *study.Planner, flashcards *study.Flashcards) *StudyHandler {
	return &StudyHandler{planner: planner, flashcards: flashcards}
}

type CreatePlanRequest struct {
	Topic         string `json:"topic" validate:"required,max=500"`
	Duration      string `json:"duration" validate:"required,max=100"`
	DailyTime     string `json:"dailyTime" validate:"required,max=100"`
	Level         string `json:"level" validate:"required,max=100"`
	LearningStyle string `json:"learningStyle" validate:"required,max=200"`
}

// POST /api/v1/study/plans
func (h *StudyHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	var req CreatePlanRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	plan, err := h.planner.CreateStudyPlan(r.Context(), accountID, study.PlanRequest{
		Topic:         req.Topic,
		Duration:      req.Duration,
		DailyTime:     req.DailyTime,
		Level:         req.Level,
		LearningStyle: req.LearningStyle,
	})
	if err != nil {
		writeUpstreamError(w, err, "error creating study plan", accountID)
		return
	}

	writeJSON(w, http.StatusCreated, plan)
}

// GET /api/v1/study/plans
func (h *StudyHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	plans, err := h.planner.ListStudyPlans(r.Context(), accountID)
	if err != nil {
		slog.Error("error listing study plans", "error", err, "account_id", accountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

type FlashcardsRequest struct {
	Topic string `json:"topic" validate:"required,max=500"`
	Count int    `json:"count" validate:"omitempty,min=1,max=50"`
}

// POST /api/v1/study/flashcards generates cards without persisting them.
func (h *StudyHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	var req FlashcardsRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	cards, err := h.flashcards.GenerateFlashcards(r.Context(), req.Topic, req.Count)
	if err != nil {
		writeUpstreamError(w, err, "error generating flashcards", accountID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
}

type QuizResultRequest struct {
	Topic          string  `json:"topic" validate:"required,max=500"`
	ScorePercent   float64 `json:"scorePercent" validate:"min=0,max=100"`
	TotalQuestions int     `json:"totalQuestions" validate:"required,min=1"`
	CorrectAnswers int     `json:"correctAnswers" validate:"min=0"`
}

// POST /api/v1/study/quiz-results
func (h *StudyHandler) RecordQuizResult(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	var req QuizResultRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if req.CorrectAnswers > req.TotalQuestions {
		badRequest(w, "correctAnswers cannot exceed totalQuestions")
		return
	}

	result, err := h.flashcards.RecordQuizResult(r.Context(), accountID, &models.QuizResult{
		Topic:          req.Topic,
		ScorePercent:   req.ScorePercent,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
	})
	if err != nil {
		slog.Error("error recording quiz result", "error", err, "account_id", accountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GET /api/v1/study/quiz-results
func (h *StudyHandler) ListQuizResults(w http.ResponseWriter, r *http.Request) {
	accountID := GetAccountID(r)
	if accountID == "" {
		unauthorized(w, "Account not found in context")
		return
	}

	results, err := h.flashcards.ListQuizResults(r.Context(), accountID)
	if err != nil {
		slog.Error("error listing quiz results", "error", err, "account_id", accountID)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func writeUpstreamError(w http.ResponseWriter, err error, logMsg, accountID string) {
	switch {
	case errors.Is(err, ai.ErrAuthFailed):
		writeError(w, http.StatusBadGateway, constants.ErrCodeUpstreamAuth,
			"The generative service rejected our credentials")
	case errors.Is(err, ai.ErrQuotaExceeded):
		writeError(w, http.StatusServiceUnavailable, constants.ErrCodeUpstreamQuota,
			"The generative service quota is exhausted, try again later")
	default:
		slog.Error(logMsg, "error", err, "account_id", accountID)
		internalError(w)
	}
}
