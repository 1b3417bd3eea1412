package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	raw, err := m.GenerateAccessToken("7", "bob", "buyer")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)

	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "7" || claims.Username != "bob" || claims.Role != "buyer" {
		t.Fatalf("claims do not round-trip: %+v", claims)
	}

	if claims.JTI == "" {
		t.Fatal("token lacks a jti")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := NewManager("secret", time.Hour)
	other := NewManager("different", time.Hour)

	raw, err := m.GenerateAccessToken("7", "bob", "buyer")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.VerifyAccessToken(raw); err == nil {
		t.Fatal("token verified under the wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)

	raw, err := m.GenerateAccessToken("7", "bob", "buyer")

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("secret", time.Hour)

	if _, err := m.VerifyAccessToken("not-a-token"); err == nil {
		t.Fatal("garbage token verified")
	}
}
