package domain

import (
	"errors"
	"testing"
)

func TestParsePriorityMode(t *testing.T) {
	for _, name := range []string{"balance", "distance", "load", "emission"} {
		m, err := ParsePriorityMode(name)
		if err != nil {
			t.Fatalf("ParsePriorityMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("round trip %q -> %q", name, m.String())
		}
	}

	if m, err := ParsePriorityMode(" Emission "); err != nil || m != PriorityEmission {
		t.Fatalf("normalized parse = %v, %v", m, err)
	}

	if _, err := ParsePriorityMode("fastest"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
