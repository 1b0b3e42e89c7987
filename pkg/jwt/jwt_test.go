package jwt

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-16")
	id := uuid.New()

	token, err := GenerateToken(id, "cast@example.com", "Aoi", "cast", []string{"attendance:clock"}, "v1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != id || claims.Email != "cast@example.com" || claims.RoleCode != "cast" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if len(claims.Privileges) != 1 || claims.TokenVersion != "v1" {
		t.Errorf("unexpected privileges/version: %+v", claims)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret-value")
	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "owner", nil, "v")
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("JWT_SECRET", "second-secret-value")
	if _, err := ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	t.Setenv("JWT_SECRET", "some-secret-value")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{Email: "x@example.com"})
	signed, err := token.SignedString(GetSecretKey())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateToken(signed); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_Garbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
