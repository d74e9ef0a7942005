package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hearthealth/hearthealth/internal/handler/dto"
	"github.com/hearthealth/hearthealth/internal/service"
)

// TechnicalIssueMessage is returned when the generative API cannot answer.
const TechnicalIssueMessage = "Sorry, I'm facing a technical issue."

var errInvalidRiskScore = errors.New("invalid risk score")

// Coach is the coaching service used by CoachHandler.
type Coach interface {
	Chat(ctx context.Context, messages []string) (string, error)
	NutritionPlan(ctx context.Context, req service.NutritionRequest) (string, error)
	StressPlan(ctx context.Context, req service.StressPlanRequest) (string, error)
}

// CoachHandler serves the chat, nutrition and stress coaching endpoints.
// None of them require authentication.
type CoachHandler struct {
	svc    Coach
	logger *slog.Logger
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(svc Coach, logger *slog.Logger) *CoachHandler {
	return &CoachHandler{
		svc:    svc,
		logger: logger,
	}
}

// Chatbot handles POST /api/chatbot.
// Failures are reported in the answer field so the chat UI can show them.
func (h *CoachHandler) Chatbot(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := decodeLenient(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	messages := make([]string, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = textValue(m.Text)
	}

	answer, err := h.svc.Chat(r.Context(), messages)
	if err != nil {
		h.logger.Error("chatbot_failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ChatResponse{Answer: TechnicalIssueMessage})
		return
	}

	writeJSON(w, http.StatusOK, dto.ChatResponse{Answer: answer})
}

// NutritionPlanner handles POST /api/nutrition-planner.
func (h *CoachHandler) NutritionPlanner(w http.ResponseWriter, r *http.Request) {
	var req dto.NutritionRequest
	if err := decodeLenient(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	risk, err := riskScore(req.RiskScore)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	plan, err := h.svc.NutritionPlan(r.Context(), service.NutritionRequest{
		Age:          textValue(req.Age),
		Goal:         textValue(req.Goal),
		Restrictions: textValue(req.Restrictions),
		RiskScore:    risk,
	})
	if err != nil {
		h.handleGenerationError(w, r, "nutrition_plan_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MealPlanResponse{MealPlan: plan})
}

// StressCoach handles POST /api/stress-coach.
func (h *CoachHandler) StressCoach(w http.ResponseWriter, r *http.Request) {
	var req dto.StressCoachRequest
	if err := decodeLenient(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	risk, err := riskScore(req.RiskScore)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	plan, err := h.svc.StressPlan(r.Context(), service.StressPlanRequest{
		Topic:     textValue(req.Topic),
		RiskScore: risk,
	})
	if err != nil {
		h.handleGenerationError(w, r, "stress_plan_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StressPlanResponse{StressPlan: plan})
}

// handleGenerationError keeps validation errors as they are and turns every
// other failure into the generic technical-issue reply.
func (h *CoachHandler) handleGenerationError(w http.ResponseWriter, r *http.Request, event string, err error) {
	if errors.Is(err, service.ErrMissingNutritionFields) || errors.Is(err, service.ErrMissingTopic) {
		handleServiceError(h.logger, w, r, err)
		return
	}
	h.logger.Error(event, "error", err)
	writeError(w, http.StatusInternalServerError, "GENAI_UNAVAILABLE", TechnicalIssueMessage)
}

// textValue renders a form value as prompt text. Empty, zero and false
// values render as "" so they count as missing.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if !t {
			return ""
		}
		return "True"
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := textValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		data, err := json.Marshal(t)
		if err != nil || string(data) == "{}" {
			return ""
		}
		return string(data)
	}
}

// riskScore reads an optional probability sent as a number or numeric string.
func riskScore(v any) (*float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, errInvalidRiskScore
		}
		f = n
	case float64:
		f = t
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, errInvalidRiskScore
		}
		f = n
	default:
		return nil, errInvalidRiskScore
	}
	return &f, nil
}
