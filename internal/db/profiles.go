package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edumate/internal/models"
)

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ProfileFields carries the full set of writable profile columns. Saves are
// full overwrites; there is no partial update.
type ProfileFields struct {
	Name          string
	AcademicYear  int
	Course        string
	Interests     string
	Goals         string
	Hobbies       string
	LearningStyle string
	CurrentSkills string
}

// Upsert writes the profile and flips the owning account's profile_complete
// flag in one transaction. The UNIQUE constraint on account_id keeps a
// concurrent first save from producing two rows.
func (r *ProfileRepository) Upsert(ctx context.Context, accountID string, fields ProfileFields) (*models.Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting profile save transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var existingID string
	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM profiles WHERE account_id = ?`, accountID,
	).Scan(&existingID, &createdAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		existingID, err = GenerateID("prf")
		if err != nil {
			return nil, fmt.Errorf("generating profile ID: %w", err)
		}
		createdAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (id, account_id, name, academic_year, course, interests, goals, hobbies, learning_style, current_skills, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			existingID, accountID, fields.Name, fields.AcademicYear, fields.Course,
			fields.Interests, fields.Goals, fields.Hobbies, fields.LearningStyle,
			fields.CurrentSkills, createdAt, now,
		)
		if err != nil {
			if IsUniqueConstraintError(err) {
				return nil, ErrDuplicate
			}
			if IsForeignKeyConstraintError(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("creating profile: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("querying existing profile: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles
                SET name = ?, academic_year = ?, course = ?, interests = ?, goals = ?,
                    hobbies = ?, learning_style = ?, current_skills = ?, updated_at = ?
              WHERE account_id = ?`,
			fields.Name, fields.AcademicYear, fields.Course, fields.Interests,
			fields.Goals, fields.Hobbies, fields.LearningStyle, fields.CurrentSkills,
			now, accountID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating profile: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE accounts SET profile_complete = TRUE WHERE id = ?`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking profile complete: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, fmt.Errorf("marking profile complete: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing profile save: %w", err)
	}

	return &models.Profile{
		ID:            existingID,
		AccountID:     accountID,
		Name:          fields.Name,
		AcademicYear:  fields.AcademicYear,
		Course:        fields.Course,
		Interests:     fields.Interests,
		Goals:         fields.Goals,
		Hobbies:       fields.Hobbies,
		LearningStyle: fields.LearningStyle,
		CurrentSkills: fields.CurrentSkills,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}, nil
}

func (r *ProfileRepository) FindByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	var p models.Profile

	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, academic_year, course, interests, goals, hobbies, learning_style, current_skills, created_at, updated_at
           FROM profiles WHERE account_id = ?`,
		accountID,
	).Scan(&p.ID, &p.AccountID, &p.Name, &p.AcademicYear, &p.Course, &p.Interests,
		&p.Goals, &p.Hobbies, &p.LearningStyle, &p.CurrentSkills, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	return &p, nil
}
