package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	tokens, err := NewTokenService(TokenConfig{Secret: "test-secret", Algorithm: "HS256", AccessTTL: 30 * time.Minute})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	if _, err := NewTokenService(TokenConfig{Algorithm: "HS256"}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "RS256"}); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm")
	}
	if _, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "none"}); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	token, err := tokens.AccessToken(42)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	sub, err := tokens.Subject(token)
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if sub != 42 {
		t.Fatalf("expected subject 42, got %d", sub)
	}
}

func TestTokenService_Claims(t *testing.T) {
	tokens := newTestTokens(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return fixed }

	access, _ := tokens.AccessToken(7)
	refresh, _ := tokens.RefreshToken(7)

	for name, tc := range map[string]struct {
		token string
		ttl   time.Duration
	}{
		"access":  {access, 30 * time.Minute},
		"refresh": {refresh, DefaultRefreshTokenTTL},
	} {
		claims := &jwt.RegisteredClaims{}
		_, _, err := jwt.NewParser().ParseUnverified(tc.token, claims)
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if claims.Subject != "7" {
			t.Fatalf("%s: expected sub \"7\", got %q", name, claims.Subject)
		}
		if !claims.ExpiresAt.Time.Equal(fixed.Add(tc.ttl)) {
			t.Fatalf("%s: expected exp %v, got %v", name, fixed.Add(tc.ttl), claims.ExpiresAt.Time)
		}
		if claims.ID == "" {
			t.Fatalf("%s: expected jti to be set", name)
		}
	}
	if access == refresh {
		t.Fatalf("access and refresh tokens should differ")
	}
}

func TestTokenService_Expired(t *testing.T) {
	tokens := newTestTokens(t)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	token, _ := tokens.AccessToken(1)

	tokens.now = func() time.Time { return issued.Add(31 * time.Minute) }
	if _, err := tokens.Subject(token); !errors.Is(err, errInvalidToken) {
		t.Fatalf("expected errInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	tokens := newTestTokens(t)

	other, _ := NewTokenService(TokenConfig{Secret: "other-secret", Algorithm: "HS256"})
	foreign, _ := other.AccessToken(1)
	if _, err := tokens.Subject(foreign); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}

	hs512, _ := NewTokenService(TokenConfig{Secret: "test-secret", Algorithm: "HS512"})
	wrongAlg, _ := hs512.AccessToken(1)
	if _, err := tokens.Subject(wrongAlg); err == nil {
		t.Fatalf("expected token with a different algorithm to be rejected")
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("test-secret"))
	if _, err := tokens.Subject(noExp); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}

	badSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ana",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if _, err := tokens.Subject(badSub); err == nil {
		t.Fatalf("expected non-numeric subject to be rejected")
	}

	if _, err := tokens.Subject("not-a-jwt"); err == nil {
		t.Fatalf("expected garbage to be rejected")
	}
}
