package session

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvSessionIssuer, "")
	t.Setenv(EnvSessionAudience, "")
	t.Setenv(EnvSessionPublicKey, "")

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error when env vars are missing")
	}

	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	t.Setenv(EnvSessionIssuer, "issuer")
	t.Setenv(EnvSessionAudience, "audience")
	t.Setenv(EnvSessionPublicKey, base64.RawStdEncoding.EncodeToString(pubKey))

	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load session config: %v", err)
	}
	if cfg.Issuer != "issuer" || cfg.Audience != "audience" {
		t.Fatal("expected issuer and audience to be loaded")
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		t.Fatalf("expected public key size %d", ed25519.PublicKeySize)
	}
}

func TestVerifySuccess(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	token := signSessionToken(t, priv, map[string]any{
		"alg": "EdDSA",
		"typ": "JWT",
	}, map[string]any{
		"iss":   "issuer",
		"aud":   []string{"boardflow", "secondary"},
		"sub":   "user-1",
		"exp":   now.Add(2 * time.Hour).Unix(),
		"iat":   now.Add(-time.Minute).Unix(),
		"name":  "Ada",
		"email": "ada@example.com",
	})

	cfg := Config{Issuer: "issuer", Audience: "boardflow", Key: pub, Now: func() time.Time { return now }}
	claims, err := Verify(token, cfg)
	if err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1 subject, got %s", claims.UserID)
	}
	if claims.UserName != "Ada" || claims.UserEmail != "ada@example.com" {
		t.Fatal("expected profile claims to be carried through")
	}
	if !claims.ExpiresAt.Equal(time.Unix(now.Add(2*time.Hour).Unix(), 0).UTC()) {
		t.Fatal("expected expires at to match exp")
	}
}

func TestVerifyExpired(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	token := signSessionToken(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss": "issuer",
		"aud": "boardflow",
		"sub": "user-1",
		"exp": now.Add(-time.Minute).Unix(),
	})

	cfg := Config{Issuer: "issuer", Audience: "boardflow", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(token, cfg)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestVerifyAudienceMismatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	token := signSessionToken(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss": "issuer",
		"aud": "someone-else",
		"sub": "user-1",
		"exp": now.Add(time.Hour).Unix(),
	})

	cfg := Config{Issuer: "issuer", Audience: "boardflow", Key: pub, Now: func() time.Time { return now }}
	_, err = Verify(token, cfg)
	if err == nil || !strings.Contains(err.Error(), "audience mismatch") {
		t.Fatalf("expected audience mismatch error, got %v", err)
	}
}

func TestVerifyInvalidSignature(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	cfg := Config{Issuer: "issuer", Audience: "boardflow", Key: pub, Now: time.Now}
	if _, err := Verify("invalid.token.parts", cfg); err == nil {
		t.Fatal("expected error for invalid session token")
	}
}

func signSessionToken(t *testing.T, privateKey ed25519.PrivateKey, header, payload map[string]any) string {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload
	signature := ed25519.Sign(privateKey, []byte(signingInput))
	encodedSig := base64.RawURLEncoding.EncodeToString(signature)
	return signingInput + "." + encodedSig
}
