//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/hearthealth/hearthealth/internal/testutil"
)

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != user.Username || byID.PasswordHash != user.PasswordHash {
		t.Errorf("unexpected user: %+v", byID)
	}

	byName, err := repo.GetUserByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byName.ID, user.ID)
	}
}

func TestIntegrationUserRepository_DuplicateUsername(t *testing.T) {
	ctx, repo := newTestEnv(t)

	first := testutil.NewTestUser(t)
	second := testutil.NewTestUser(t)
	second.Username = first.Username

	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetUserByUsername(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.DeleteUser(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_DeleteCascades(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.CreatePrediction(ctx, testutil.NewTestPrediction(t, user.ID, 0.4, time.Now())); err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	var count int
	if err := repo.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM predictions WHERE user_id = $1", user.ID).Scan(&count); err != nil {
		t.Fatalf("count predictions: %v", err)
	}
	if count != 0 {
		t.Errorf("expected predictions to be deleted with user, got %d", count)
	}
}
