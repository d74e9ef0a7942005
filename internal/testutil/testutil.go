// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema migrates the database all the way down and back up through the
// same golang-migrate pipeline the server uses.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	m, err := migrations.NewMigrator(pool.Config().ConnConfig, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrations.Close(m)
	}()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	return ctx.Err()
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with a unique username.
// The password hash is a placeholder and will not verify.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:           ulid.Make().String(),
		Username:     UniqueID("user"),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPrediction creates a test prediction for a user.
func NewTestPrediction(t testing.TB, userID string, probability float64, createdAt time.Time) *model.Prediction {
	t.Helper()
	age, cp := 54, 2
	oldpeak := 1.4
	return &model.Prediction{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Probability:  probability,
		ModelVersion: "test",
		Features:     []string{"age", "cp", "oldpeak"},
		CreatedAt:    createdAt.UTC().Truncate(time.Microsecond),
		Inputs: model.ClinicalInputs{
			Age:     &age,
			CP:      &cp,
			Oldpeak: &oldpeak,
		},
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
