package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)

	token, err := service.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := service.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("Verify returned user %d, want 42", userID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)
	// A service whose TTL is already in the past issues expired tokens.
	expired := &TokenService{secret: []byte("test-secret"), ttl: -31 * 24 * time.Hour}

	token, err := expired.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := service.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenService("right-secret", time.Hour)
	verifier := NewTokenService("wrong-secret", time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := service.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestDefaultTTL(t *testing.T) {
	service := NewTokenService("test-secret", 0)
	if service.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", service.ttl, DefaultTokenTTL)
	}
}
