package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"edumate/internal/models"
)

type QuizResultRepository struct {
	db *DB
}

func NewQuizResultRepository(db *DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

func (r *QuizResultRepository) Create(ctx context.Context, accountID string, result *models.QuizResult) (*models.QuizResult, error) {
	id, err := GenerateID("qz")
	if err != nil {
		return nil, fmt.Errorf("generating quiz result ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quiz_results (id, account_id, topic, score_percentage, total_questions, correct_answers, grade, taken_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, accountID, result.Topic, result.ScorePercent, result.TotalQuestions,
		result.CorrectAnswers, result.Grade, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating quiz result: %w", err)
	}

	stored := *result
	stored.ID = id
	stored.AccountID = &accountID
	stored.TakenAt = now

	return &stored, nil
}

func (r *QuizResultRepository) FindByAccountID(ctx context.Context, accountID string) ([]*models.QuizResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, topic, score_percentage, total_questions, correct_answers, grade, taken_at
           FROM quiz_results WHERE account_id = ? ORDER BY taken_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying quiz results: %w", err)
	}
	defer rows.Close()

	var results []*models.QuizResult
	for rows.Next() {
		var q models.QuizResult
		var owner sql.NullString

		if err := rows.Scan(&q.ID, &owner, &q.Topic, &q.ScorePercent,
			&q.TotalQuestions, &q.CorrectAnswers, &q.Grade, &q.TakenAt); err != nil {
			return nil, fmt.Errorf("scanning quiz result: %w", err)
		}

		q.AccountID = nullStringToPtr(owner)
		results = append(results, &q)
	}

	return results, rows.Err()
}
