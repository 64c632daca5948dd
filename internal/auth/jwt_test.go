package auth

import (
	"testing"
	"time"

	"vms-backend/internal/config"
)

func testManager(secret string, ttl time.Duration) *JWTManager {
	return NewJWTManager(&config.Config{JWT: config.JWTConfig{Secret: secret, TTL: ttl}})
}

func TestGenerateAndParse(t *testing.T) {
	m := testManager("secret-a", time.Hour)

	token, err := m.Generate(7, "guard1", "SECURITY")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "guard1" || claims.Role != "SECURITY" {
		t.Errorf("claims = %+v, want uid 7 / guard1 / SECURITY", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := testManager("secret-a", time.Hour).Generate(1, "alice", "STAFF")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := testManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := testManager("secret-a", -time.Minute)
	token, err := m.Generate(1, "alice", "STAFF")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := testManager("secret-a", time.Hour)
	for _, token := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := m.Parse(token); err == nil {
			t.Errorf("garbage token %q was accepted", token)
		}
	}
}

func TestActorHasRole(t *testing.T) {
	actor := Actor{UserID: 1, Username: "guard1", Role: "SECURITY"}
	if !actor.HasRole("SECURITY") {
		t.Error("HasRole(SECURITY) = false")
	}
	if !actor.HasRole("ADMIN", "SECURITY") {
		t.Error("HasRole(ADMIN, SECURITY) = false")
	}
	if actor.HasRole("ADMIN", "STAFF") {
		t.Error("HasRole(ADMIN, STAFF) = true")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter22" {
		t.Error("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
