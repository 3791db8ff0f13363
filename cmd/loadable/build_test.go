package main

import "testing"

func TestUseTUIForFlagValues(t *testing.T) {
	if on, err := useTUIFor("on"); err != nil || !on {
		t.Fatalf("on = %v, %v", on, err)
	}
	if on, err := useTUIFor(" OFF "); err != nil || on {
		t.Fatalf("off = %v, %v", on, err)
	}
	// "auto" is terminal-dependent; it just has to be accepted.
	if _, err := useTUIFor("auto"); err != nil {
		t.Fatalf("auto: %v", err)
	}
	if _, err := useTUIFor(""); err != nil {
		t.Fatalf("empty: %v", err)
	}
	if _, err := useTUIFor("fancy"); err == nil {
		t.Fatalf("expected error for unknown value")
	}
}

func TestFormatPathForOutput(t *testing.T) {
	if got := formatPathForOutput("/proj", "/proj/dist/m.json"); got != "dist/m.json" {
		t.Fatalf("got %q, want project-relative path", got)
	}
	if got := formatPathForOutput("/proj", "/elsewhere/m.json"); got != "/elsewhere/m.json" {
		t.Fatalf("got %q, want absolute path kept", got)
	}
	if got := formatPathForOutput("", "/x/m.json"); got != "/x/m.json" {
		t.Fatalf("got %q, want input unchanged", got)
	}
}
