package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/config"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "agricontract",
		ExpirationMinutes: minutes,
	}
}

func factorySession() models.Session {
	return models.Session{ID: "user_1700000000000_abc123xyz", Name: "Sunrise Foods", Email: "ops@sunrise.in", Role: enums.RoleFactory}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{Session: factorySession(), JTI: "jti-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.Session() != factorySession() {
		t.Fatalf("session not preserved: %+v", claims.Session())
	}
	if claims.ID != "jti-1" {
		t.Fatalf("expected jti to be preserved, got %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	diff := claims.ExpiresAt.Sub(now.Add(30 * time.Minute))
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt.UTC())
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig(5)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Session: factorySession()})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Session: factorySession()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{Session: factorySession()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenRejectsBadPayload(t *testing.T) {
	cfg := testJWTConfig(5)

	noRole := factorySession()
	noRole.Role = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Session: noRole}); err == nil {
		t.Fatal("expected invalid role error")
	}

	noID := factorySession()
	noID.ID = " "
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Session: noID}); err == nil {
		t.Fatal("expected missing user id error")
	}

	if _, err := MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 5}, time.Now(), AccessTokenPayload{Session: factorySession()}); err == nil {
		t.Fatal("expected missing secret error")
	}
}
