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

// Accounts is the account service used by AccountHandler.
type Accounts interface {
	Register(ctx context.Context, creds service.Credentials) (*model.User, error)
	Login(ctx context.Context, creds service.Credentials) (string, error)
	Delete(ctx context.Context, userID string) error
}

// AccountHandler handles registration, login and account removal.
type AccountHandler struct {
	svc    Accounts
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc Accounts, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeLenient(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// Login handles POST /api/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeLenient(r, &req); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	token, err := h.svc.Login(r.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: token})
}

// Delete handles DELETE /api/account.
// Stored predictions are removed with the account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("account_deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
