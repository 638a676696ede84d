package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"edumate/internal/ai"
	"edumate/internal/db"
	"edumate/internal/models"
)

// Flashcards generates term/definition study cards and records quiz
// outcomes. Cards are ephemeral: they are returned to the caller and never
// persisted.
type Flashcards struct {
	generator ai.Generator
	searcher  ai.Searcher
	results   *db.QuizResultRepository
	topK      int
}

func NewFlashcards(
	generator ai.Generator,
	searcher ai.Searcher,
	results *db.QuizResultRepository,
	topK int,
) *Flashcards {
	if searcher == nil {
		searcher = ai.NoSearch{}
	}
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	return &Flashcards{
		generator: generator,
		searcher:  searcher,
		results:   results,
		topK:      topK,
	}
}

func (f *Flashcards) GenerateFlashcards(ctx context.Context, topic string, count int) ([]models.Flashcard, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if count <= 0 {
		count = 10
	}

	content, err := f.searcher.Search(ctx, topic, f.topK)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			slog.Warn("course content search unavailable", "component", "flashcards", "error", err)
		}
		content = ""
	}

	response, err := f.generator.Generate(ctx, buildFlashcardPrompt(topic, count, content))
	if err != nil {
		return nil, fmt.Errorf("generating flashcards: %w", err)
	}

	cards := parseFlashcards(response)
	if len(cards) == 0 {
		return nil, fmt.Errorf("no flashcards could be parsed from response")
	}
	return cards, nil
}

func (f *Flashcards) RecordQuizResult(ctx context.Context, accountID string, result *models.QuizResult) (*models.QuizResult, error) {
	if strings.TrimSpace(result.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if result.ScorePercent < 0 || result.ScorePercent > 100 {
		return nil, fmt.Errorf("score must be between 0 and 100")
	}
	result.Grade = gradeForScore(result.ScorePercent)
	return f.results.Create(ctx, accountID, result)
}

func (f *Flashcards) ListQuizResults(ctx context.Context, accountID string) ([]*models.QuizResult, error) {
	return f.results.FindByAccountID(ctx, accountID)
}

func gradeForScore(percent float64) string {
	switch {
	case percent >= 90:
		return "A"
	case percent >= 80:
		return "B"
	case percent >= 70:
		return "C"
	case percent >= 60:
		return "D"
	default:
		return "F"
	}
}

func buildFlashcardPrompt(topic string, count int, courseContent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert flashcard creator. Generate exactly %d flashcards for the topic: %s
`, count, topic)

	if courseContent != "" {
		fmt.Fprintf(&b, `
**Available Course Content (Use as primary reference):**
%s

Base the flashcards on the course content above wherever it covers the topic.
`, courseContent)
	}

	fmt.Fprintf(&b, `
**Output Format (follow EXACTLY, no extra text):**

FLASHCARD_1:
TERM: [the term or concept]
DEFINITION: [a clear, concise definition or explanation]

FLASHCARD_2:
TERM: [the term or concept]
DEFINITION: [a clear, concise definition or explanation]

Continue this pattern through FLASHCARD_%d. Each flashcard must have exactly one TERM line and one DEFINITION line. Do not add numbering, markdown, or commentary outside this format.
`, count)

	return b.String()
}

// parseFlashcards reads the FLASHCARD_N / TERM / DEFINITION format. Lines
// after DEFINITION that carry no prefix continue the definition. Cards
// missing either half are dropped rather than failing the batch.
func parseFlashcards(response string) []models.Flashcard {
	var cards []models.Flashcard

	for _, block := range strings.Split(response, "FLASHCARD_")[1:] {
		var term string
		var def strings.Builder
		inDefinition := false

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "TERM:"):
				term = strings.TrimSpace(strings.TrimPrefix(line, "TERM:"))
				inDefinition = false
			case strings.HasPrefix(line, "DEFINITION:"):
				def.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "DEFINITION:")))
				inDefinition = true
			case inDefinition && line != "":
				def.WriteString(" ")
				def.WriteString(line)
			}
		}

		definition := strings.TrimSpace(def.String())
		if term != "" && definition != "" {
			cards = append(cards, models.Flashcard{Term: term, Definition: definition})
		}
	}

	return cards
}
