package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("ENVUTIL_STR", " value ")
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "x")
	t.Setenv("ENVUTIL_BOOL", "yes")
	t.Setenv("ENVUTIL_SECS", "90")

	if got := String("ENVUTIL_STR", "d"); got != "value" {
		t.Fatalf("String: got=%q", got)
	}
	if got := String("ENVUTIL_MISSING", "d"); got != "d" {
		t.Fatalf("String default: got=%q", got)
	}
	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("Int: got=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	if !Bool("ENVUTIL_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	if got := Seconds("ENVUTIL_SECS", time.Second); got != 90*time.Second {
		t.Fatalf("Seconds: got=%s", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_DUR", "15m")
	t.Setenv("ENVUTIL_DUR_SECS", "30")
	t.Setenv("ENVUTIL_DUR_BAD", "soon")

	cases := map[string]time.Duration{
		"ENVUTIL_DUR":      15 * time.Minute,
		"ENVUTIL_DUR_SECS": 30 * time.Second,
		"ENVUTIL_DUR_BAD":  time.Hour,
		"ENVUTIL_DUR_NONE": time.Hour,
	}
	for name, want := range cases {
		if got := Duration(name, time.Hour); got != want {
			t.Fatalf("%s: got=%s want=%s", name, got, want)
		}
	}
}
