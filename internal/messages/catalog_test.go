package messages

import "testing"

func TestCatalogText(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}

	got, err := c.Text(GroupSystem, Greeting)
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}
	if got != "Hello, I'm ready to start the interview." {
		t.Fatalf("unexpected greeting: %q", got)
	}

	if _, err := c.Text("unknown", Greeting); err == nil {
		t.Fatalf("expected error for unknown group")
	}
	if _, err := c.Text(GroupErrors, "missing"); err == nil {
		t.Fatalf("expected error for missing key")
	}

	if len(c.Groups()) != 2 {
		t.Fatalf("expected 2 groups, got %v", c.Groups())
	}
}

func TestLookupFallsBackToKey(t *testing.T) {
	if got := Lookup(Default(), GroupErrors, "nope"); got != "nope" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if got := Lookup(nil, GroupErrors, Forbidden); got != "Permission denied." {
		t.Fatalf("expected default catalog text, got %q", got)
	}
}
