package models

import "time"

type Account struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	ProfileComplete bool       `json:"profileComplete"`
}

// Profile is the one-to-one student record owned by an Account. All text
// fields are required; AcademicYear is constrained to 1..4.
type Profile struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"-"`
	Name          string    `json:"name"`
	AcademicYear  int       `json:"academicYear"`
	Course        string    `json:"course"`
	Interests     string    `json:"interests"`
	Goals         string    `json:"goals"`
	Hobbies       string    `json:"hobbies"`
	LearningStyle string    `json:"learningStyle"`
	CurrentSkills string    `json:"currentSkills"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RememberToken is a long-lived bearer credential; only the SHA-256 hash of
// the raw token is ever persisted.
type RememberToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
