package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hearthealth/hearthealth/internal/handler/dto"
	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAccounts struct {
	user      *model.User
	token     string
	err       error
	gotCreds  service.Credentials
	deletedID string
}

func (f *fakeAccounts) Register(ctx context.Context, creds service.Credentials) (*model.User, error) {
	f.gotCreds = creds
	return f.user, f.err
}

func (f *fakeAccounts) Login(ctx context.Context, creds service.Credentials) (string, error) {
	f.gotCreds = creds
	return f.token, f.err
}

func (f *fakeAccounts) Delete(ctx context.Context, userID string) error {
	f.deletedID = userID
	return f.err
}

type fakePredictor struct {
	heart        *service.HeartResult
	stress       *service.StressResult
	history      *service.History
	err          error
	gotPayload   map[string]any
	gotPrincipal *model.Principal
	gotUserID    string
}

func (f *fakePredictor) PredictHeart(ctx context.Context, payload map[string]any, principal *model.Principal) (*service.HeartResult, error) {
	f.gotPayload = payload
	f.gotPrincipal = principal
	return f.heart, f.err
}

func (f *fakePredictor) PredictStress(ctx context.Context, payload map[string]any) (*service.StressResult, error) {
	f.gotPayload = payload
	return f.stress, f.err
}

func (f *fakePredictor) History(ctx context.Context, userID string) (*service.History, error) {
	f.gotUserID = userID
	return f.history, f.err
}

type fakeCoach struct {
	answer       string
	err          error
	gotMessages  []string
	gotNutrition service.NutritionRequest
	gotStress    service.StressPlanRequest
}

func (f *fakeCoach) Chat(ctx context.Context, messages []string) (string, error) {
	f.gotMessages = messages
	return f.answer, f.err
}

func (f *fakeCoach) NutritionPlan(ctx context.Context, req service.NutritionRequest) (string, error) {
	f.gotNutrition = req
	if f.err != nil {
		return "", f.err
	}
	if req.Age == "" || req.Goal == "" {
		return "", service.ErrMissingNutritionFields
	}
	return f.answer, nil
}

func (f *fakeCoach) StressPlan(ctx context.Context, req service.StressPlanRequest) (string, error) {
	f.gotStress = req
	if f.err != nil {
		return "", f.err
	}
	if req.Topic == "" {
		return "", service.ErrMissingTopic
	}
	return f.answer, nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
