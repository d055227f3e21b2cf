package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, claims, err := issuer.GenerateToken(42, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id")
	}

	parsed, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := parsed.UserID()
	if err != nil || id != 42 {
		t.Fatalf("user id = %d, %v; want 42", id, err)
	}
	if parsed.Role != "admin" {
		t.Errorf("role = %q, want admin", parsed.Role)
	}
	if parsed.ID != claims.ID {
		t.Errorf("jti = %q, want %q", parsed.ID, claims.ID)
	}
}

func TestParseRejectsOtherSecret(t *testing.T) {
	token, _, err := NewIssuer("one", time.Hour).GenerateToken(1, "user")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewIssuer("two", time.Hour).ParseToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.GenerateToken(1, "user")
	if err != nil {
		t.Fatal(err)
	}
	issuer.now = time.Now
	if _, err := issuer.ParseToken(token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewIssuer("secret", 0).ParseToken("not-a-token"); err == nil {
		t.Fatal("expected parse error")
	}
}
