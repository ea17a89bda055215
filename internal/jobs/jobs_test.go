package jobs

import (
	"context"
	"errors"
	"testing"
)

func TestStaticGetDescription(t *testing.T) {
	t.Parallel()

	src := Static{
		"inline": "We need a backend engineer fluent in Python and SQL.",
		"blank":  "   ",
	}

	desc, err := src.GetDescription(context.Background(), "inline")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if desc != src["inline"] {
		t.Fatalf("unexpected description: %q", desc)
	}

	if _, err := src.GetDescription(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := src.GetDescription(context.Background(), "blank"); err == nil {
		t.Fatal("expected error for an empty description")
	}
}
