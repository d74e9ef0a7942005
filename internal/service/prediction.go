package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hearthealth/hearthealth/internal/inference"
	"github.com/hearthealth/hearthealth/internal/metrics"
	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/internal/repository"
)

// Registered model names.
const (
	HeartModel  = "heart"
	StressModel = "stress"
)

// Stress payload keys derived from the combined blood pressure reading.
const (
	bloodPressureKey = "Blood Pressure"
	systolicKey      = "Systolic BP"
	diastolicKey     = "Diastolic BP"
)

// Prediction errors.
var (
	ErrNoData         = errors.New("no JSON data received")
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrBloodPressure  = errors.New("blood pressure must look like 120/80")
)

// HeartResult is the outcome of a heart risk prediction.
type HeartResult struct {
	Probability float64
	// PredictionID is set when the prediction was stored for the caller.
	PredictionID string
}

// StressResult is the outcome of a stress level prediction.
type StressResult struct {
	Level         model.StressLevel
	Probabilities map[string]float64
}

// History is a user's stored predictions, newest first.
type History struct {
	Username    string
	Predictions []*model.Prediction
}

// PredictionService serves classifier predictions and prediction history.
type PredictionService struct {
	models      ModelSource
	users       UserStore
	predictions PredictionStore
	metrics     metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewPredictionService creates a new PredictionService.
func NewPredictionService(models ModelSource, users UserStore, predictions PredictionStore, recorder metrics.Recorder, logger *slog.Logger) *PredictionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		models:      models,
		users:       users,
		predictions: predictions,
		metrics:     recorder,
		logger:      logger.With("component", "prediction_service"),
		now:         time.Now,
	}
}

// PredictHeart returns the probability of the high-risk class for a flat
// feature payload. When principal is non-nil the prediction is stored for
// that user; a storage failure is logged and does not fail the call.
func (s *PredictionService) PredictHeart(ctx context.Context, payload map[string]any, principal *model.Principal) (*HeartResult, error) {
	art, err := s.model(HeartModel)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, ErrNoData
	}

	row, err := art.Assemble(payload)
	if err != nil {
		s.metrics.IncPrediction(HeartModel, metrics.OutcomeFailure)
		return nil, err
	}

	probability, err := art.RiskProbability(row)
	if err != nil {
		s.metrics.IncPrediction(HeartModel, metrics.OutcomeFailure)
		return nil, fmt.Errorf("evaluate heart model: %w", err)
	}
	s.metrics.IncPrediction(HeartModel, metrics.OutcomeSuccess)

	result := &HeartResult{Probability: probability}
	if principal == nil {
		return result, nil
	}

	p := &model.Prediction{
		ID:           newID(),
		UserID:       principal.UserID,
		Probability:  probability,
		ModelVersion: art.Version,
		Features:     art.FeatureNames(),
		CreatedAt:    s.now().UTC(),
	}
	// Clinical fields the model does not use are kept when they coerce.
	for _, name := range model.ClinicalFieldNames {
		if v, err := inference.ToFloat(payload[name]); err == nil {
			p.Inputs.Set(name, v)
		}
	}
	for name, v := range art.Values(row) {
		p.Inputs.Set(name, v)
	}

	if err := s.predictions.CreatePrediction(ctx, p); err != nil {
		s.logger.Error("failed to store prediction",
			"user_id", principal.UserID,
			"error", err,
		)
		return result, nil
	}

	s.metrics.IncPredictionPersisted()
	result.PredictionID = p.ID
	return result, nil
}

// PredictStress classifies a stress questionnaire. A combined "Blood
// Pressure" reading such as "126/83" is split into its systolic and
// diastolic features when those are not given directly.
func (s *PredictionService) PredictStress(ctx context.Context, payload map[string]any) (*StressResult, error) {
	art, err := s.model(StressModel)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, ErrNoData
	}

	payload, err = splitBloodPressure(payload)
	if err != nil {
		s.metrics.IncPrediction(StressModel, metrics.OutcomeFailure)
		return nil, err
	}

	row, err := art.Assemble(payload)
	if err != nil {
		s.metrics.IncPrediction(StressModel, metrics.OutcomeFailure)
		return nil, err
	}

	label, proba, err := art.Predict(row)
	if err != nil {
		s.metrics.IncPrediction(StressModel, metrics.OutcomeFailure)
		return nil, fmt.Errorf("evaluate stress model: %w", err)
	}
	s.metrics.IncPrediction(StressModel, metrics.OutcomeSuccess)

	probabilities := make(map[string]float64, len(proba))
	for i, c := range art.Classes {
		probabilities[c] = proba[i]
	}

	return &StressResult{Level: model.StressLevel(label), Probabilities: probabilities}, nil
}

// History returns the stored predictions for a user.
func (s *PredictionService) History(ctx context.Context, userID string) (*History, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	predictions, err := s.predictions.ListPredictionsByUser(ctx, userID, repository.DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	return &History{Username: user.Username, Predictions: predictions}, nil
}

func (s *PredictionService) model(name string) (*inference.Artifact, error) {
	art, err := s.models.Get(name)
	if err != nil {
		if errors.Is(err, inference.ErrModelNotLoaded) {
			return nil, ErrModelNotLoaded
		}
		return nil, err
	}
	return art, nil
}

func splitBloodPressure(payload map[string]any) (map[string]any, error) {
	raw, ok := payload[bloodPressureKey]
	if !ok || raw == nil {
		return payload, nil
	}
	_, hasSys := payload[systolicKey]
	_, hasDia := payload[diastolicKey]
	if hasSys && hasDia {
		return payload, nil
	}

	text, ok := raw.(string)
	if !ok {
		return nil, ErrBloodPressure
	}
	sys, dia, ok := strings.Cut(strings.TrimSpace(text), "/")
	if !ok {
		return nil, ErrBloodPressure
	}
	systolic, err := strconv.Atoi(strings.TrimSpace(sys))
	if err != nil {
		return nil, ErrBloodPressure
	}
	diastolic, err := strconv.Atoi(strings.TrimSpace(dia))
	if err != nil {
		return nil, ErrBloodPressure
	}

	out := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		out[k] = v
	}
	out[systolicKey] = float64(systolic)
	out[diastolicKey] = float64(diastolic)
	return out, nil
}
