package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthealth/hearthealth/internal/genai"
)

// EmptyChatReply is returned when the latest chat message has no text.
const EmptyChatReply = "..."

// Coaching errors.
var (
	ErrMissingNutritionFields = errors.New("missing required fields (age or goal)")
	ErrMissingTopic           = errors.New("missing form data")
)

// NutritionRequest holds the inputs of a meal plan. Values are already
// rendered as text; RiskScore is the latest heart risk probability, if known.
type NutritionRequest struct {
	Age          string
	Goal         string
	Restrictions string
	RiskScore    *float64
}

// StressPlanRequest holds the inputs of a stress-relief plan.
type StressPlanRequest struct {
	Topic     string
	RiskScore *float64
}

// CoachService builds prompts for the chat, nutrition and stress features.
type CoachService struct {
	generator genai.Generator
	prompts   *genai.Prompts
}

// NewCoachService creates a new CoachService.
func NewCoachService(generator genai.Generator, prompts *genai.Prompts) *CoachService {
	return &CoachService{generator: generator, prompts: prompts}
}

// Chat answers the latest message of a conversation. Earlier messages are
// not sent upstream.
func (s *CoachService) Chat(ctx context.Context, messages []string) (string, error) {
	if len(messages) == 0 {
		return EmptyChatReply, nil
	}
	text := strings.TrimSpace(messages[len(messages)-1])
	if text == "" {
		return EmptyChatReply, nil
	}

	return s.generate(ctx, genai.KindChat, text)
}

// NutritionPlan generates a 3-day meal plan tailored to the heart risk score.
func (s *CoachService) NutritionPlan(ctx context.Context, req NutritionRequest) (string, error) {
	if req.Age == "" || req.Goal == "" {
		return "", ErrMissingNutritionFields
	}
	return s.generate(ctx, genai.KindNutrition, NutritionPrompt(req))
}

// StressPlan generates a short stress-relief plan.
func (s *CoachService) StressPlan(ctx context.Context, req StressPlanRequest) (string, error) {
	if req.Topic == "" {
		return "", ErrMissingTopic
	}
	return s.generate(ctx, genai.KindStress, StressPrompt(req))
}

func (s *CoachService) generate(ctx context.Context, kind, prompt string) (string, error) {
	return s.generator.Generate(ctx, genai.Request{
		Kind:   kind,
		System: s.prompts.System(kind),
		Prompt: prompt,
	})
}

// NutritionPrompt renders the meal plan prompt.
func NutritionPrompt(req NutritionRequest) string {
	restrictions := req.Restrictions
	if restrictions == "" {
		restrictions = "None"
	}
	return fmt.Sprintf(`
Please generate a 3-day sample meal plan for me.
- My Age: %s
- My Health Goal: %s
- My Dietary Restrictions: %s
- My LATEST HEART RISK SCORE: %s
IMPORTANT: You MUST tailor the meal plan to be appropriate for my heart risk score.
`, req.Age, req.Goal, restrictions, NutritionRiskText(req.RiskScore))
}

// StressPrompt renders the stress plan prompt.
func StressPrompt(req StressPlanRequest) string {
	return fmt.Sprintf(`
Please generate a 2-3 step, simple stress-relief plan for me.
- My Main Stressor: %s
- My LATEST HEART RISK SCORE: %s
Please make the plan specific to my stressor and acknowledge my heart risk level.
`, req.Topic, StressRiskText(req.RiskScore))
}

// NutritionRiskText describes a risk score in four bands.
func NutritionRiskText(score *float64) string {
	if score == nil {
		return "N/A"
	}
	pct := riskPercent(*score)
	switch {
	case *score > 0.7:
		return pct + "% (VERY HIGH risk...)"
	case *score > 0.5:
		return pct + "% (HIGH risk...)"
	case *score > 0.3:
		return pct + "% (BORDERLINE...)"
	default:
		return pct + "% (LOW risk...)"
	}
}

// StressRiskText describes a risk score in two bands.
func StressRiskText(score *float64) string {
	if score == nil {
		return "N/A"
	}
	pct := riskPercent(*score)
	if *score > 0.5 {
		return pct + "% (HIGH risk)"
	}
	return pct + "% (LOW/BORDERLINE risk)"
}

// riskPercent renders a probability as a percentage with one decimal.
func riskPercent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64)
}
