package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSecretsAndHashesIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"user_id", "5b1c6e1e-5d0f-4a59-9a36-2e7f0d6f7b11",
		"axis", "strength",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("access_token not redacted: %v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") {
		t.Fatalf("user_id not hashed: %v", out[3])
	}
	if out[5] != "strength" {
		t.Fatalf("plain value changed: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out[6])
	}
}

func TestSanitizeValueDetectsJWTShapedStrings(t *testing.T) {
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("note", jwtish); got != "[REDACTED]" {
		t.Fatalf("expected JWT to be redacted, got %v", got)
	}
}

func TestNewTestMode(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	child := log.With("service", "x")
	if child == nil || child.SugaredLogger == nil {
		t.Fatalf("With returned nil logger")
	}
}
