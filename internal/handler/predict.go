package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hearthealth/hearthealth/internal/auth"
	"github.com/hearthealth/hearthealth/internal/handler/dto"
	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/internal/service"
)

// Predictor is the prediction service used by PredictionHandler.
type Predictor interface {
	PredictHeart(ctx context.Context, payload map[string]any, principal *model.Principal) (*service.HeartResult, error)
	PredictStress(ctx context.Context, payload map[string]any) (*service.StressResult, error)
	History(ctx context.Context, userID string) (*service.History, error)
}

// PredictionHandler serves classifier predictions and prediction history.
type PredictionHandler struct {
	svc    Predictor
	logger *slog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(svc Predictor, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		svc:    svc,
		logger: logger,
	}
}

// Predict handles POST /api/predict. Authentication is optional; when the
// caller is signed in the prediction is added to their history.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeLenient(r, &payload); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	result, err := h.svc.PredictHeart(r.Context(), payload, auth.PrincipalFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PredictResponse{
		Message:             "Prediction successful",
		ProbabilityHighRisk: result.Probability,
		PredictionID:        result.PredictionID,
	})
}

// PredictStress handles POST /api/predict-stress.
func (h *PredictionHandler) PredictStress(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeLenient(r, &payload); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	result, err := h.svc.PredictStress(r.Context(), payload)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StressResponse{
		StressLevel:   string(result.Level),
		Probabilities: result.Probabilities,
	})
}

// History handles GET /api/prediction-history.
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToHistoryResponse(history.Username, history.Predictions))
}
