package services

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssueVerify_Success(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("super-secret")
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}

	tok, err := svc.Issue("Test User", "test@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Name != "Test User" || claims.Email != "test@example.com" {
		t.Fatalf("payload mismatch: %+v", claims)
	}
}

func TestTokenVerify_Expired(t *testing.T) {
	t.Parallel()

	svc, _ := NewTokenService("secret")

	tok, err := svc.Issue("Test User", "test@example.com", -1*time.Second)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenService("right-secret")
	verifier, _ := NewTokenService("wrong-secret")

	tok, err := issuer.Issue("Test User", "test@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = verifier.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc, _ := NewTokenService("secret")

	_, err := svc.Verify("not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenService("   "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
