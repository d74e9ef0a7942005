package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hearthealth/hearthealth/internal/model"
)

func TestTokens_RoundTrip(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue("01HZX5Q0USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	p, err := tokens.Parse(signed)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.UserID != "01HZX5Q0USER" {
		t.Errorf("UserID = %s, want 01HZX5Q0USER", p.UserID)
	}
}

func TestTokens_Rejects(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("test-secret", time.Hour)
	valid, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	expired := NewTokens("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.Issue("user-1")

	otherSecret, _ := NewTokens("other-secret", time.Hour).Issue("user-1")

	noSubject, _ := tokens.Issue("")

	// HS512 with the right secret is still rejected.
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: TokenIssuer},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"tampered", valid + "x"},
		{"expired", expiredToken},
		{"wrong secret", otherSecret},
		{"missing subject", noSubject},
		{"wrong algorithm", wrongAlg},
		{"wrong issuer", wrongIssuer},
		{"no expiry", noExpiry},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tokens.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Error("expected nil principal on empty context")
	}
	if UserIDFromContext(ctx) != "" {
		t.Error("expected empty user ID on empty context")
	}

	ctx = ContextWithPrincipal(ctx, &model.Principal{UserID: "user-1"})
	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Errorf("UserIDFromContext = %s, want user-1", got)
	}
}
