package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"edumate/internal/db"
)

func newTestService(t *testing.T, rememberTTL time.Duration) (*Service, *db.DB) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	service := NewService(
		db.NewAccountRepository(database),
		db.NewProfileRepository(database),
		db.NewRememberTokenRepository(database),
		rememberTTL,
	)

	return service, database
}

func validProfileInput() ProfileInput {
	return ProfileInput{
		Name:          "Alice",
		AcademicYear:  2,
		Course:        "Computer Science",
		Interests:     "distributed systems",
		Goals:         "graduate with honors",
		Hobbies:       "climbing",
		LearningStyle: "visual",
		CurrentSkills: "python, go",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if accountID == "" {
		t.Fatal("Register() returned empty account ID")
	}

	session, err := service.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.AccountID != accountID {
		t.Fatalf("login account ID = %q, want %q", session.AccountID, accountID)
	}
	if session.ProfileComplete {
		t.Fatal("fresh account should not report a complete profile")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := service.Register(ctx, "alice@example.com", "different"); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("Register() duplicate error = %v, want ErrDuplicateAccount", err)
	}
}

// Racing registrations for one email must resolve to exactly one success no
// matter the interleaving; the rest see the duplicate error.
func TestRegisterConcurrentDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	const racers = 8
	errs := make(chan error, racers)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			_, err := service.Register(ctx, "alice@example.com", "secret123")
			errs <- err
		}()
	}
	start.Done()

	var successes, duplicates int
	for i := 0; i < racers; i++ {
		switch err := <-errs; {
		case err == nil:
			successes++
		case errors.Is(err, ErrDuplicateAccount):
			duplicates++
		default:
			t.Fatalf("Register() unexpected error = %v", err)
		}
	}

	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if duplicates != racers-1 {
		t.Fatalf("duplicates = %d, want %d", duplicates, racers-1)
	}
}

func TestRegisterEmptyInput(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	var validationErr *ValidationError
	if _, err := service.Register(ctx, "", "secret123"); !errors.As(err, &validationErr) {
		t.Fatalf("Register() empty email error = %v, want ValidationError", err)
	}
	if _, err := service.Register(ctx, "alice@example.com", ""); !errors.As(err, &validationErr) {
		t.Fatalf("Register() empty password error = %v, want ValidationError", err)
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginFailuresAreIdentical(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	if _, err := service.Register(ctx, "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, unknownErr := service.Login(ctx, "nobody@example.com", "secret123")
	_, wrongErr := service.Login(ctx, "alice@example.com", "wrongpass")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestRememberTokenRoundTrip(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := service.IssueRememberToken(ctx, accountID)
	if err != nil {
		t.Fatalf("IssueRememberToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("IssueRememberToken() returned empty token")
	}

	session, err := service.ValidateRememberToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateRememberToken() error = %v", err)
	}
	if session.AccountID != accountID {
		t.Fatalf("session account ID = %q, want %q", session.AccountID, accountID)
	}
}

func TestSecondTokenInvalidatesFirst(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	first, err := service.IssueRememberToken(ctx, accountID)
	if err != nil {
		t.Fatalf("IssueRememberToken() error = %v", err)
	}
	second, err := service.IssueRememberToken(ctx, accountID)
	if err != nil {
		t.Fatalf("IssueRememberToken() second error = %v", err)
	}

	if _, err := service.ValidateRememberToken(ctx, first); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("first token error = %v, want ErrInvalidToken", err)
	}
	if _, err := service.ValidateRememberToken(ctx, second); err != nil {
		t.Fatalf("second token error = %v", err)
	}
}

func TestIssueRememberTokenUnknownAccount(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)

	if _, err := service.IssueRememberToken(context.Background(), "acc_missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("IssueRememberToken() error = %v, want wrapped ErrNotFound", err)
	}
}

// Racing issuances must converge to a single live token; every superseded
// token is dead.
func TestConcurrentIssueKeepsSingleLiveToken(t *testing.T) {
	service, database := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	const racers = 6
	tokens := make(chan string, racers)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			token, err := service.IssueRememberToken(ctx, accountID)
			if err != nil {
				t.Errorf("IssueRememberToken() error = %v", err)
			}
			tokens <- token
		}()
	}
	start.Done()

	var valid int
	for i := 0; i < racers; i++ {
		token := <-tokens
		if token == "" {
			continue
		}
		if _, err := service.ValidateRememberToken(ctx, token); err == nil {
			valid++
		} else if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ValidateRememberToken() error = %v", err)
		}
	}
	if valid != 1 {
		t.Fatalf("valid tokens = %d, want exactly 1", valid)
	}

	var stored int
	if err := database.QueryRow(
		`SELECT COUNT(*) FROM remember_tokens WHERE account_id = ?`, accountID,
	).Scan(&stored); err != nil {
		t.Fatalf("counting remember tokens: %v", err)
	}
	if stored != 1 {
		t.Fatalf("stored tokens = %d, want exactly 1", stored)
	}
}

func TestExpiredTokenIsInvalid(t *testing.T) {
	service, _ := newTestService(t, -1*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := service.IssueRememberToken(ctx, accountID)
	if err != nil {
		t.Fatalf("IssueRememberToken() error = %v", err)
	}

	if _, err := service.ValidateRememberToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("ValidateRememberToken() error = %v, want ErrInvalidToken for expired token", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := service.IssueRememberToken(ctx, accountID)
	if err != nil {
		t.Fatalf("IssueRememberToken() error = %v", err)
	}

	if err := service.Logout(ctx, accountID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := service.Logout(ctx, accountID); err != nil {
		t.Fatalf("Logout() repeated error = %v", err)
	}

	if _, err := service.ValidateRememberToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token after logout error = %v, want ErrInvalidToken", err)
	}
}

func TestSaveProfileRejectsBadYearWithoutWriting(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	input := validProfileInput()
	input.AcademicYear = 5

	var validationErr *ValidationError
	if _, err := service.SaveProfile(ctx, accountID, input); !errors.As(err, &validationErr) {
		t.Fatalf("SaveProfile() error = %v, want ValidationError", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0] != "academicYear" {
		t.Fatalf("validation fields = %v, want [academicYear]", validationErr.Fields)
	}

	if _, err := service.GetProfile(ctx, accountID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("GetProfile() after rejected save error = %v, want ErrNotFound", err)
	}

	session, err := service.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.ProfileComplete {
		t.Fatal("rejected save must not mark the profile complete")
	}
}

func TestSaveProfileReportsAllMissingFields(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	input := validProfileInput()
	input.Course = ""
	input.Hobbies = "   "

	var validationErr *ValidationError
	if _, err := service.SaveProfile(ctx, accountID, input); !errors.As(err, &validationErr) {
		t.Fatalf("SaveProfile() error = %v, want ValidationError", err)
	}
	if len(validationErr.Fields) != 2 {
		t.Fatalf("validation fields = %v, want exactly course and hobbies", validationErr.Fields)
	}
}

func TestSaveProfileStripsMarkup(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	input := validProfileInput()
	input.Interests = `<script>alert("x")</script>reading`

	profile, err := service.SaveProfile(ctx, accountID, input)
	if err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if profile.Interests != "reading" {
		t.Fatalf("interests = %q, want markup stripped to %q", profile.Interests, "reading")
	}
}

// Full lifecycle: register, log in, complete the profile, come back with a
// remember token, log out.
func TestFullAccountLifecycle(t *testing.T) {
	service, _ := newTestService(t, 30*24*time.Hour)
	ctx := context.Background()

	accountID, err := service.Register(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	session, err := service.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.ProfileComplete {
		t.Fatal("profile should start incomplete")
	}

	if _, err := service.SaveProfile(ctx, accountID, validProfileInput()); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	token, err := service.IssueRememberToken(ctx, accountID)
	if err != nil {
		t.Fatalf("IssueRememberToken() error = %v", err)
	}

	returning, err := service.ValidateRememberToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateRememberToken() error = %v", err)
	}
	if !returning.ProfileComplete {
		t.Fatal("returning session should see the completed profile")
	}

	if err := service.Logout(ctx, accountID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := service.ValidateRememberToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token after logout error = %v, want ErrInvalidToken", err)
	}
}
