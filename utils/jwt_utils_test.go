package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("ana@example.com", "developer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "ana@example.com" || claims.Role != "developer" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for a malformed token")
	}
}

func TestValidateTokenRejectsMissingExpiry(t *testing.T) {
	// A token signed with the right key but carrying no exp claim must be
	// rejected, not treated as never-expiring.
	claims := &Claims{Email: "ana@example.com", Role: "developer"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Error("expected error for a token without expiry")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	claims := &Claims{
		Email: "ana@example.com",
		Role:  "developer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Error("expected error for an expired token")
	}
}
