package auth

import (
	"testing"
	"time"

	"demand-platform/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		JWTIssuer:       "demand-platform",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return m
}

func TestManager_IssueAndVerifyAccess(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "u1", "acme", "squad-a", "manager")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claims.UserID != "u1" || claims.CompanyID != "acme" || claims.SquadID != "squad-a" || claims.Role != "manager" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestManager_RefreshTokenDropsRole(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "u1", "acme", "", "manager")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	claims, err := m.Verify(pair.RefreshToken, TokenTypeRefresh, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claims.Role != "" {
		t.Fatalf("refresh token must not carry a role, got %q", claims.Role)
	}
}

func TestManager_RejectsWrongTokenType(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "u1", "acme", "", "manager")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := m.Verify(pair.RefreshToken, TokenTypeAccess, now.Add(time.Minute)); err == nil {
		t.Fatalf("expected token_type mismatch error")
	}
}

func TestManager_AcceptsWithinLeeway(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "u1", "acme", "", "manager")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// 10s past expiry is inside the 30s clock-skew leeway.
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(15*time.Minute+10*time.Second)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestManager_RejectsExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "u1", "acme", "", "manager")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(16*time.Minute)); err == nil {
		t.Fatalf("expected expiry error")
	}
}
