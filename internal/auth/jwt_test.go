package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "asha@ju.ac.in", "user")
	if err != nil {
		t.Fatalf("Generate() err = %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() err = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %v, want %v", claims.UserID, userID)
	}
	if claims.Email != "asha@ju.ac.in" || claims.Role != "user" {
		t.Errorf("claims = %q/%q, want email/role preserved", claims.Email, claims.Role)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "x@ju.ac.in", "admin")
	if err != nil {
		t.Fatalf("Generate() err = %v", err)
	}
	_, err = NewJWTService("secret-b", 1).Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate() err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -1)
	token, err := svc.Generate(uuid.New(), "x@ju.ac.in", "user")
	if err != nil {
		t.Fatalf("Generate() err = %v", err)
	}
	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate() err = %v, want ErrInvalidToken for expired token", err)
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := NewJWTService("test-secret", 1).Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Validate() err = %v, want ErrInvalidToken", err)
	}
}
