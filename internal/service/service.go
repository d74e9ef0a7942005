// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/hearthealth/hearthealth/internal/inference"
	"github.com/hearthealth/hearthealth/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PredictionStore persists prediction history.
type PredictionStore interface {
	CreatePrediction(ctx context.Context, p *model.Prediction) error
	ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*model.Prediction, error)
}

// ModelSource returns the currently loaded artifact for a model name.
type ModelSource interface {
	Get(name string) (*inference.Artifact, error)
}

func newID() string {
	return ulid.Make().String()
}
