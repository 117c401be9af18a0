package users

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plain password")
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("expected password to verify: %v", err)
	}
	if err := CheckPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("expected wrong password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{UserID: "user-1", Username: "admin", Role: RoleAdmin}
	token, err := GenerateToken("secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.UserID != "user-1" || parsed.Username != "admin" || parsed.Role != RoleAdmin {
		t.Fatalf("claims lost in round trip: %+v", parsed)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected parse to fail with the wrong secret")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
