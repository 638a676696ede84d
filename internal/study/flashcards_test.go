package study

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"edumate/internal/ai"
	"edumate/internal/db"
	"edumate/internal/models"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

type fakeSearcher struct {
	content string
	err     error
	topics  []string
}

func (s *fakeSearcher) Search(_ context.Context, topic string, _ int) (string, error) {
	s.topics = append(s.topics, topic)
	return s.content, s.err
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

func createTestAccount(t *testing.T, database *db.DB) string {
	t.Helper()

	account, err := db.NewAccountRepository(database).Create(context.Background(), "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return account.ID
}

func TestParseFlashcards(t *testing.T) {
	response := `FLASHCARD_1:
TERM: Goroutine
DEFINITION: A lightweight thread managed by the Go runtime.

FLASHCARD_2:
TERM: Channel
DEFINITION: A typed conduit for sending values
between goroutines.
`

	cards := parseFlashcards(response)
	if len(cards) != 2 {
		t.Fatalf("parsed %d cards, want 2", len(cards))
	}

	if cards[0].Term != "Goroutine" {
		t.Fatalf("first term = %q, want %q", cards[0].Term, "Goroutine")
	}
	if cards[1].Definition != "A typed conduit for sending values between goroutines." {
		t.Fatalf("continuation line not folded into definition: %q", cards[1].Definition)
	}
}

func TestParseFlashcardsDropsIncomplete(t *testing.T) {
	response := `FLASHCARD_1:
TERM: Orphan term with no definition

FLASHCARD_2:
TERM: Mutex
DEFINITION: A mutual exclusion lock.
`

	cards := parseFlashcards(response)
	if len(cards) != 1 {
		t.Fatalf("parsed %d cards, want 1", len(cards))
	}
	if cards[0].Term != "Mutex" {
		t.Fatalf("term = %q, want %q", cards[0].Term, "Mutex")
	}
}

func TestParseFlashcardsEmptyResponse(t *testing.T) {
	if cards := parseFlashcards("I cannot generate flashcards for that."); len(cards) != 0 {
		t.Fatalf("parsed %d cards from junk, want 0", len(cards))
	}
}

func TestGenerateFlashcardsDegradesWithoutSearch(t *testing.T) {
	database := openTestDB(t)
	generator := &fakeGenerator{response: "FLASHCARD_1:\nTERM: Stack\nDEFINITION: LIFO collection."}

	flashcards := NewFlashcards(generator, ai.NoSearch{}, db.NewQuizResultRepository(database), 0)

	cards, err := flashcards.GenerateFlashcards(context.Background(), "data structures", 1)
	if err != nil {
		t.Fatalf("GenerateFlashcards() error = %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if strings.Contains(generator.prompts[0], "Available Course Content") {
		t.Fatal("prompt should not mention course content when search is unconfigured")
	}
}

func TestGenerateFlashcardsUsesCourseContent(t *testing.T) {
	database := openTestDB(t)
	generator := &fakeGenerator{response: "FLASHCARD_1:\nTERM: Heap\nDEFINITION: Priority structure."}
	searcher := &fakeSearcher{content: "Chapter 4: heaps and priority queues"}

	flashcards := NewFlashcards(generator, searcher, db.NewQuizResultRepository(database), 5)

	if _, err := flashcards.GenerateFlashcards(context.Background(), "heaps", 1); err != nil {
		t.Fatalf("GenerateFlashcards() error = %v", err)
	}

	if len(searcher.topics) != 1 || searcher.topics[0] != "heaps" {
		t.Fatalf("search topics = %v, want [heaps]", searcher.topics)
	}
	if !strings.Contains(generator.prompts[0], "Chapter 4: heaps and priority queues") {
		t.Fatal("prompt should embed the retrieved course content")
	}
}

func TestGradeForScore(t *testing.T) {
	cases := []struct {
		percent float64
		want    string
	}{
		{100, "A"},
		{90, "A"},
		{89.9, "B"},
		{80, "B"},
		{75, "C"},
		{60, "D"},
		{59.9, "F"},
		{0, "F"},
	}

	for _, tc := range cases {
		if got := gradeForScore(tc.percent); got != tc.want {
			t.Errorf("gradeForScore(%v) = %q, want %q", tc.percent, got, tc.want)
		}
	}
}

func TestRecordAndListQuizResults(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	flashcards := NewFlashcards(&fakeGenerator{}, ai.NoSearch{}, db.NewQuizResultRepository(database), 5)
	ctx := context.Background()

	stored, err := flashcards.RecordQuizResult(ctx, accountID, &models.QuizResult{
		Topic:          "heaps",
		ScorePercent:   85,
		TotalQuestions: 20,
		CorrectAnswers: 17,
	})
	if err != nil {
		t.Fatalf("RecordQuizResult() error = %v", err)
	}
	if stored.Grade != "B" {
		t.Fatalf("grade = %q, want %q", stored.Grade, "B")
	}

	results, err := flashcards.ListQuizResults(ctx, accountID)
	if err != nil {
		t.Fatalf("ListQuizResults() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Topic != "heaps" {
		t.Fatalf("topic = %q, want %q", results[0].Topic, "heaps")
	}
}

func TestRecordQuizResultRejectsBadScore(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	flashcards := NewFlashcards(&fakeGenerator{}, ai.NoSearch{}, db.NewQuizResultRepository(database), 5)

	if _, err := flashcards.RecordQuizResult(context.Background(), accountID, &models.QuizResult{
		Topic:          "heaps",
		ScorePercent:   120,
		TotalQuestions: 10,
	}); err == nil {
		t.Fatal("RecordQuizResult() should reject a score above 100")
	}
}
