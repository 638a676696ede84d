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

// DefaultSearchTopK matches how many content pieces the planner pulls from
// the document search service per topic.
const DefaultSearchTopK = 5

// Planner turns a learning goal into a stored day-by-day study plan. Course
// content from the search service is used when available; its absence only
// means the plan is generated from the request and profile alone.
type Planner struct {
	generator ai.Generator
	searcher  ai.Searcher
	profiles  *db.ProfileRepository
	plans     *db.StudyPlanRepository
	topK      int
}

type PlanRequest struct {
	Topic         string
	Duration      string
	DailyTime     string
	Level         string
	LearningStyle string
}

func NewPlanner(
	generator ai.Generator,
	searcher ai.Searcher,
	profiles *db.ProfileRepository,
	plans *db.StudyPlanRepository,
	topK int,
) *Planner {
	if searcher == nil {
		searcher = ai.NoSearch{}
	}
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	return &Planner{
		generator: generator,
		searcher:  searcher,
		profiles:  profiles,
		plans:     plans,
		topK:      topK,
	}
}

func (p *Planner) CreateStudyPlan(ctx context.Context, accountID string, req PlanRequest) (*models.StudyPlan, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	profile, err := p.profiles.FindByAccountID(ctx, accountID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("loading profile for plan: %w", err)
	}

	content := p.searchCourseContent(ctx, req.Topic)

	prompt := buildPlanPrompt(req, profile, content)
	planText, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating study plan: %w", err)
	}

	return p.plans.Create(ctx, accountID, &models.StudyPlan{
		Topic:         req.Topic,
		Duration:      req.Duration,
		DailyTime:     req.DailyTime,
		Level:         req.Level,
		LearningStyle: req.LearningStyle,
		Content:       planText,
	})
}

func (p *Planner) ListStudyPlans(ctx context.Context, accountID string) ([]*models.StudyPlan, error) {
	return p.plans.FindByAccountID(ctx, accountID)
}

// searchCourseContent never fails the plan: an unconfigured or unreachable
// search service degrades to generator-only mode.
func (p *Planner) searchCourseContent(ctx context.Context, topic string) string {
	content, err := p.searcher.Search(ctx, topic, p.topK)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			slog.Warn("course content search unavailable", "component", "planner", "error", err)
		}
		return ""
	}
	return content
}

func buildPlanPrompt(req PlanRequest, profile *models.Profile, courseContent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert educational planner and learning strategist. Create a comprehensive study plan based on the following requirements:

**Learning Goal:** %s
**Study Duration:** %s
**Daily Available Time:** %s
**Current Level:** %s
**Learning Style:** %s
`, req.Topic, req.Duration, req.DailyTime, req.Level, req.LearningStyle)

	if profile != nil {
		fmt.Fprintf(&b, `
**Student Profile:**
- Name: %s
- Course/Major: %s
- Academic Year: %d
- Interests: %s
- Goals: %s
- Learning Style Preference: %s
- Current Skills: %s

**Personalization Instructions:**
- Tailor the study plan to align with the student's course, interests, and academic goals.
- Adjust the complexity and focus based on the student's current skills and academic year.
- Incorporate the student's preferred learning style where possible.
`, profile.Name, profile.Course, profile.AcademicYear, profile.Interests,
			profile.Goals, profile.LearningStyle, profile.CurrentSkills)
	}

	if courseContent != "" {
		fmt.Fprintf(&b, `
**Available Course Content (Use as primary reference):**
%s

**IMPORTANT:** Base your study plan on the available course content above. Structure the daily activities around the topics and chapters identified in the course content.
`, courseContent)
	}

	b.WriteString(`
**Plan Requirements:**
1. Create a day-by-day breakdown for the specified duration
2. Each day should have specific learning objectives and activities
3. Gradually increase complexity based on the current level
4. Align activities with the specified learning style
5. Include variety in daily activities (reading, practice, projects, review)
6. Add weekly milestone checkpoints
7. Ensure realistic time allocation per activity

Format the response as a structured calendar view with clear day or week headers, specific topics with estimated durations, and weekly milestone sections.

Please generate a detailed, actionable study plan now:
`)

	return b.String()
}
