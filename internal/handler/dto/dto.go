// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/hearthealth/hearthealth/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// LoginResponse carries the access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// PredictResponse is the heart risk prediction result.
type PredictResponse struct {
	Message             string  `json:"message"`
	ProbabilityHighRisk float64 `json:"probability_high_risk"`
	PredictionID        string  `json:"prediction_id,omitempty"`
}

// StressResponse is the stress level prediction result.
type StressResponse struct {
	StressLevel   string             `json:"stress_level"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// HistoryResponse lists a user's stored predictions, newest first.
type HistoryResponse struct {
	Username string         `json:"username"`
	History  []HistoryEntry `json:"history"`
}

// HistoryEntry is one stored prediction.
type HistoryEntry struct {
	ID          string               `json:"id"`
	Probability float64              `json:"probability"`
	Timestamp   time.Time            `json:"timestamp"`
	Inputs      model.ClinicalInputs `json:"inputs"`
}

// ChatRequest is a chat transcript; only the last message is answered.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is a single chat turn. Text is usually a string but any JSON
// value is accepted and rendered as text.
type ChatMessage struct {
	Text any `json:"text"`
}

// ChatResponse carries the chat answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// NutritionRequest is the body of the nutrition planner. Fields are free-form
// JSON values as sent by the web form.
type NutritionRequest struct {
	Age          any `json:"age"`
	Goal         any `json:"goal"`
	Restrictions any `json:"restrictions"`
	RiskScore    any `json:"riskScore"`
}

// MealPlanResponse carries the generated meal plan.
type MealPlanResponse struct {
	MealPlan string `json:"meal_plan"`
}

// StressCoachRequest is the body of the stress coach.
type StressCoachRequest struct {
	Topic     any `json:"topic"`
	RiskScore any `json:"riskScore"`
}

// StressPlanResponse carries the generated stress plan.
type StressPlanResponse struct {
	StressPlan string `json:"stress_plan"`
}

// ToHistoryResponse converts stored predictions to the history DTO.
func ToHistoryResponse(username string, predictions []*model.Prediction) *HistoryResponse {
	history := make([]HistoryEntry, 0, len(predictions))
	for _, p := range predictions {
		history = append(history, HistoryEntry{
			ID:          p.ID,
			Probability: p.Probability,
			Timestamp:   p.CreatedAt.UTC(),
			Inputs:      p.Inputs,
		})
	}
	return &HistoryResponse{Username: username, History: history}
}
