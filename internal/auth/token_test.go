package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)

	token, expiresAt, err := tm.GenerateToken("bot-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("token already expired at issue time")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Gateway != "bot-1" {
		t.Fatalf("gateway = %s, want bot-1", claims.Gateway)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15)
	verifier := NewTokenManager("secret-b", 15)

	token, _, err := issuer.GenerateToken("bot-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("token with wrong secret accepted")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	if _, err := tm.ParseToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestAPIKeyHashing(t *testing.T) {
	hash, err := HashAPIKey("gateway-key", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CompareAPIKey(hash, "gateway-key"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := CompareAPIKey(hash, "wrong-key"); err == nil {
		t.Fatal("wrong key accepted")
	}
}
