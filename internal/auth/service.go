package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"edumate/internal/db"
	"edumate/internal/models"
)

// Service composes the account, profile, and remember token stores into the
// operations callers use. It keeps no session state of its own: every call
// re-derives the caller's standing from storage.
type Service struct {
	accounts       *db.AccountRepository
	profiles       *db.ProfileRepository
	rememberTokens *db.RememberTokenRepository
	rememberTTL    time.Duration
	sanitizer      *bluemonday.Policy
}

// Session is what a successful authentication yields; the caller holds it,
// not the service.
type Session struct {
	AccountID       string `json:"accountId"`
	Email           string `json:"email"`
	ProfileComplete bool   `json:"profileComplete"`
}

// ProfileInput is the full set of profile fields submitted by a caller.
// Saves are full overwrites.
type ProfileInput struct {
	Name          string
	AcademicYear  int
	Course        string
	Interests     string
	Goals         string
	Hobbies       string
	LearningStyle string
	CurrentSkills string
}

func NewService(
	accounts *db.AccountRepository,
	profiles *db.ProfileRepository,
	rememberTokens *db.RememberTokenRepository,
	rememberTTL time.Duration,
) *Service {
	return &Service{
		accounts:       accounts,
		profiles:       profiles,
		rememberTokens: rememberTokens,
		rememberTTL:    rememberTTL,
		sanitizer:      bluemonday.StrictPolicy(),
	}
}

// Register creates an account and returns its ID. Email format and minimum
// password length are the API boundary's job; this only guards against empty
// input and duplicate addresses.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", &ValidationError{Reason: "email and password are required"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	account, err := s.accounts.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return "", ErrDuplicateAccount
		}
		return "", fmt.Errorf("registering account: %w", err)
	}

	return account.ID, nil
}

// Login verifies credentials and refreshes the account's last-login
// timestamp. Unknown email and wrong password produce the identical
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("recording login: %w", err)
	}

	return &Session{
		AccountID:       account.ID,
		Email:           account.Email,
		ProfileComplete: account.ProfileComplete,
	}, nil
}

// IssueRememberToken mints a new long-lived token for the account and
// invalidates every prior one, keeping at most one live token per account.
// The raw token is returned exactly once and never stored.
func (s *Service) IssueRememberToken(ctx context.Context, accountID string) (string, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return "", fmt.Errorf("looking up account: %w", err)
	}

	token, err := GenerateRememberToken()
	if err != nil {
		return "", fmt.Errorf("generating remember token: %w", err)
	}

	expiresAt := time.Now().Add(s.rememberTTL)
	if _, err := s.rememberTokens.Replace(ctx, accountID, HashRememberToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("storing remember token: %w", err)
	}

	return token, nil
}

// ValidateRememberToken silently re-authenticates a returning caller. It
// does not refresh last-login (only interactive login does) and does not
// extend the token's expiry.
func (s *Service) ValidateRememberToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	account, err := s.rememberTokens.FindValidAccount(ctx, HashRememberToken(token))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("validating remember token: %w", err)
	}

	return &Session{
		AccountID:       account.ID,
		Email:           account.Email,
		ProfileComplete: account.ProfileComplete,
	}, nil
}

// Logout revokes every remember token for the account. Idempotent.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	if err := s.rememberTokens.DeleteForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("revoking remember tokens: %w", err)
	}
	return nil
}

// SaveProfile validates and persists the full profile, marking the owning
// account's profile as complete. Validation failures leave any existing
// profile untouched.
func (s *Service) SaveProfile(ctx context.Context, accountID string, input ProfileInput) (*models.Profile, error) {
	fields, err := s.validateProfile(input)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Upsert(ctx, accountID, *fields)
	if err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	return profile, nil
}

// GetProfile returns the account's profile, or db.ErrNotFound when none has
// been saved yet — a normal outcome, not a fault.
func (s *Service) GetProfile(ctx context.Context, accountID string) (*models.Profile, error) {
	return s.profiles.FindByAccountID(ctx, accountID)
}

func (s *Service) validateProfile(input ProfileInput) (*db.ProfileFields, error) {
	if input.AcademicYear < 1 || input.AcademicYear > 4 {
		return nil, &ValidationError{
			Fields: []string{"academicYear"},
			Reason: "academic year must be between 1 and 4",
		}
	}

	clean := func(v string) string {
		return strings.TrimSpace(s.sanitizer.Sanitize(v))
	}

	fields := db.ProfileFields{
		Name:          clean(input.Name),
		AcademicYear:  input.AcademicYear,
		Course:        clean(input.Course),
		Interests:     clean(input.Interests),
		Goals:         clean(input.Goals),
		Hobbies:       clean(input.Hobbies),
		LearningStyle: clean(input.LearningStyle),
		CurrentSkills: clean(input.CurrentSkills),
	}

	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", fields.Name},
		{"course", fields.Course},
		{"interests", fields.Interests},
		{"goals", fields.Goals},
		{"hobbies", fields.Hobbies},
		{"learningStyle", fields.LearningStyle},
		{"currentSkills", fields.CurrentSkills},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	return &fields, nil
}
