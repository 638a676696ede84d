package study

import (
	"context"
	"errors"
	"strings"
	"testing"

	"edumate/internal/ai"
	"edumate/internal/db"
)

func testPlanRequest() PlanRequest {
	return PlanRequest{
		Topic:         "graph algorithms",
		Duration:      "2 weeks",
		DailyTime:     "1 hour",
		Level:         "intermediate",
		LearningStyle: "visual",
	}
}

func TestCreateStudyPlanPersistsGeneratedPlan(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	generator := &fakeGenerator{response: "Day 1: BFS basics"}

	planner := NewPlanner(generator, ai.NoSearch{},
		db.NewProfileRepository(database), db.NewStudyPlanRepository(database), 5)
	ctx := context.Background()

	plan, err := planner.CreateStudyPlan(ctx, accountID, testPlanRequest())
	if err != nil {
		t.Fatalf("CreateStudyPlan() error = %v", err)
	}
	if plan.Content != "Day 1: BFS basics" {
		t.Fatalf("plan content = %q, want generated text", plan.Content)
	}

	plans, err := planner.ListStudyPlans(ctx, accountID)
	if err != nil {
		t.Fatalf("ListStudyPlans() error = %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("got %d plans, want 1", len(plans))
	}
	if plans[0].Topic != "graph algorithms" {
		t.Fatalf("topic = %q, want %q", plans[0].Topic, "graph algorithms")
	}
}

func TestCreateStudyPlanPersonalizesFromProfile(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	profiles := db.NewProfileRepository(database)

	if _, err := profiles.Upsert(context.Background(), accountID, db.ProfileFields{
		Name:          "Alice",
		AcademicYear:  2,
		Course:        "Computer Science",
		Interests:     "distributed systems",
		Goals:         "graduate with honors",
		Hobbies:       "climbing",
		LearningStyle: "visual",
		CurrentSkills: "python, go",
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	generator := &fakeGenerator{response: "Day 1"}
	planner := NewPlanner(generator, ai.NoSearch{}, profiles, db.NewStudyPlanRepository(database), 5)

	if _, err := planner.CreateStudyPlan(context.Background(), accountID, testPlanRequest()); err != nil {
		t.Fatalf("CreateStudyPlan() error = %v", err)
	}

	prompt := generator.prompts[0]
	if !strings.Contains(prompt, "Student Profile") {
		t.Fatal("prompt should carry the profile personalization block")
	}
	if !strings.Contains(prompt, "Computer Science") {
		t.Fatal("prompt should mention the student's course")
	}
}

func TestCreateStudyPlanWithoutProfileOmitsPersonalization(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	generator := &fakeGenerator{response: "Day 1"}

	planner := NewPlanner(generator, ai.NoSearch{},
		db.NewProfileRepository(database), db.NewStudyPlanRepository(database), 5)

	if _, err := planner.CreateStudyPlan(context.Background(), accountID, testPlanRequest()); err != nil {
		t.Fatalf("CreateStudyPlan() error = %v", err)
	}

	if strings.Contains(generator.prompts[0], "Student Profile") {
		t.Fatal("prompt should omit the profile block when none is saved")
	}
}

func TestCreateStudyPlanSurvivesSearchFailure(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	generator := &fakeGenerator{response: "Day 1"}
	searcher := &fakeSearcher{err: errors.New("search service down")}

	planner := NewPlanner(generator, searcher,
		db.NewProfileRepository(database), db.NewStudyPlanRepository(database), 5)

	if _, err := planner.CreateStudyPlan(context.Background(), accountID, testPlanRequest()); err != nil {
		t.Fatalf("CreateStudyPlan() error = %v, search failure should degrade silently", err)
	}
	if strings.Contains(generator.prompts[0], "Available Course Content") {
		t.Fatal("prompt should omit course content after a search failure")
	}
}

func TestCreateStudyPlanPropagatesGeneratorError(t *testing.T) {
	database := openTestDB(t)
	accountID := createTestAccount(t, database)
	generator := &fakeGenerator{err: ai.ErrQuotaExceeded}

	planner := NewPlanner(generator, ai.NoSearch{},
		db.NewProfileRepository(database), db.NewStudyPlanRepository(database), 5)

	_, err := planner.CreateStudyPlan(context.Background(), accountID, testPlanRequest())
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("CreateStudyPlan() error = %v, want ErrQuotaExceeded", err)
	}

	plans, listErr := planner.ListStudyPlans(context.Background(), accountID)
	if listErr != nil {
		t.Fatalf("ListStudyPlans() error = %v", listErr)
	}
	if len(plans) != 0 {
		t.Fatalf("got %d plans after failed generation, want 0", len(plans))
	}
}
