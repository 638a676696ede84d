package models

import "time"

// StudyPlan is a generated day-by-day plan kept for later review. AccountID
// is nullable: plans outlive a deleted account as anonymous records.
type StudyPlan struct {
	ID            string    `json:"id"`
	AccountID     *string   `json:"-"`
	Topic         string    `json:"topic"`
	Duration      string    `json:"duration"`
	DailyTime     string    `json:"dailyTime"`
	Level         string    `json:"level"`
	LearningStyle string    `json:"learningStyle"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
}

type QuizResult struct {
	ID             string    `json:"id"`
	AccountID      *string   `json:"-"`
	Topic          string    `json:"topic"`
	ScorePercent   float64   `json:"scorePercent"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Grade          string    `json:"grade"`
	TakenAt        time.Time `json:"takenAt"`
}

// Flashcard is a term/definition pair parsed from generated text; flashcards
// are ephemeral and never persisted.
type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}
