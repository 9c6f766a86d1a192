package http

import (
	"strings"
	"testing"
	"time"

	"settlement/internal/domain"
)

func TestSessionRoundTrip(t *testing.T) {
	manager := NewSessionManager("test-secret", time.Hour)
	user := &domain.User{ID: 42, Username: "admin"}

	token, expiresAt, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry must be in the future")
	}

	userID, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestSessionRejectsWrongSecret(t *testing.T) {
	issuer := NewSessionManager("secret-a", time.Hour)
	verifier := NewSessionManager("secret-b", time.Hour)

	token, _, err := issuer.Issue(&domain.User{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected verification failure across secrets")
	}
}

func TestSessionRejectsTamperedToken(t *testing.T) {
	manager := NewSessionManager("test-secret", time.Hour)
	token, _, err := manager.Issue(&domain.User{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := manager.Parse(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}

	if _, err := manager.Parse("garbage"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestSessionRejectsExpiredToken(t *testing.T) {
	manager := NewSessionManager("test-secret", time.Millisecond)
	token, _, err := manager.Issue(&domain.User{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
