package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"edumate/internal/models"
)

type StudyPlanRepository struct {
	db *DB
}

func NewStudyPlanRepository(db *DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

func (r *StudyPlanRepository) Create(ctx context.Context, accountID string, plan *models.StudyPlan) (*models.StudyPlan, error) {
	id, err := GenerateID("spl")
	if err != nil {
		return nil, fmt.Errorf("generating study plan ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO study_plans (id, account_id, topic, duration, daily_time, level, learning_style, plan_content, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, accountID, plan.Topic, plan.Duration, plan.DailyTime, plan.Level,
		plan.LearningStyle, plan.Content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating study plan: %w", err)
	}

	stored := *plan
	stored.ID = id
	stored.AccountID = &accountID
	stored.CreatedAt = now

	return &stored, nil
}

func (r *StudyPlanRepository) FindByAccountID(ctx context.Context, accountID string) ([]*models.StudyPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, topic, duration, daily_time, level, learning_style, plan_content, created_at
           FROM study_plans WHERE account_id = ? ORDER BY created_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying study plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.StudyPlan
	for rows.Next() {
		var p models.StudyPlan
		var owner sql.NullString

		if err := rows.Scan(&p.ID, &owner, &p.Topic, &p.Duration, &p.DailyTime,
			&p.Level, &p.LearningStyle, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning study plan: %w", err)
		}

		p.AccountID = nullStringToPtr(owner)
		plans = append(plans, &p)
	}

	return plans, rows.Err()
}
