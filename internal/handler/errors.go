package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hearthealth/hearthealth/internal/inference"
	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/internal/service"
)

// handleServiceError maps service errors to HTTP responses. Unknown errors
// are logged with detail and answered with a generic message.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var missing *inference.MissingFeaturesError

	switch {
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")

	// Accounts
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Username and password are required")
	case errors.Is(err, service.ErrUsernameTooLong):
		writeError(w, http.StatusBadRequest, "USERNAME_TOO_LONG", fmt.Sprintf("Username must be at most %d characters", model.MaxUsernameLength))
	case errors.Is(err, service.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_LONG", "Password is too long")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")

	// Predictions
	case errors.Is(err, service.ErrNoData):
		writeError(w, http.StatusBadRequest, "NO_DATA", "No JSON data received")
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", missing.Error())
	case errors.Is(err, inference.ErrInvalidFeature):
		writeError(w, http.StatusBadRequest, "INVALID_FIELD", err.Error())
	case errors.Is(err, service.ErrBloodPressure):
		writeError(w, http.StatusBadRequest, "INVALID_BLOOD_PRESSURE", "Blood Pressure must look like 120/80")
	case errors.Is(err, service.ErrModelNotLoaded):
		writeError(w, http.StatusInternalServerError, "MODEL_NOT_LOADED", "Model not loaded")

	// Coaching
	case errors.Is(err, service.ErrMissingNutritionFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields (age or goal).")
	case errors.Is(err, service.ErrMissingTopic):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Missing form data.")
	case errors.Is(err, errInvalidRiskScore):
		writeError(w, http.StatusBadRequest, "INVALID_RISK_SCORE", "riskScore must be a number")

	default:
		logger.Error("internal_error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
