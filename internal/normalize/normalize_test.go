package normalize

import "testing"

func TestEmail(t *testing.T) {
	if got := Email("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("Email normalization mismatch: got %q", got)
	}

	if got := Email("bob@example.com"); got != "bob@example.com" {
		t.Fatalf("already-normalized email changed: got %q", got)
	}

	if got := Email(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
