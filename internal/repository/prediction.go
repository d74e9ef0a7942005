package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/hearthealth/hearthealth/internal/model"
)

// DefaultHistoryLimit caps the number of predictions returned for a user.
const DefaultHistoryLimit = 500

// CreatePrediction inserts a prediction and its clinical inputs.
func (r *Repository) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	query := `
		INSERT INTO predictions (
			id, user_id, probability, model_version, features, created_at,
			age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	in := p.Inputs
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Probability,
		p.ModelVersion,
		pq.Array(p.Features),
		p.CreatedAt,
		in.Age,
		in.Sex,
		in.CP,
		in.Trestbps,
		in.Chol,
		in.FBS,
		in.RestECG,
		in.Thalach,
		in.Exang,
		in.Oldpeak,
		in.Slope,
		in.CA,
		in.Thal,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// ListPredictionsByUser returns a user's predictions, newest first.
// Ties on created_at are broken by ID so ordering is stable.
func (r *Repository) ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*model.Prediction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, user_id, probability, model_version, features, created_at,
			age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*model.Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return predictions, nil
}

func scanPrediction(row pgx.Row) (*model.Prediction, error) {
	var p model.Prediction
	var features []string
	in := &p.Inputs

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Probability,
		&p.ModelVersion,
		pq.Array(&features),
		&p.CreatedAt,
		&in.Age,
		&in.Sex,
		&in.CP,
		&in.Trestbps,
		&in.Chol,
		&in.FBS,
		&in.RestECG,
		&in.Thalach,
		&in.Exang,
		&in.Oldpeak,
		&in.Slope,
		&in.CA,
		&in.Thal,
	)
	if err != nil {
		return nil, err
	}

	p.Features = features
	return &p, nil
}
