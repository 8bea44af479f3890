package sessioncode

import (
	"strings"
	"testing"
)

func neverExists(string) (bool, error) {
	return false, nil
}

func TestGenerateFormat(t *testing.T) {
	g := NewRandom()
	for i := 0; i < 100; i++ {
		code, err := g.Generate(neverExists)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != Length {
			t.Errorf("expected code of length %d, got %q", Length, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Errorf("code %q contains %q, not in alphabet", code, c)
			}
		}
	}
}

func TestGenerateDeterministicSeed(t *testing.T) {
	a, err := New(42).Generate(neverExists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := New(42).Generate(neverExists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected same code for same seed, got %q and %q", a, b)
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	g := New(7)
	var seen []string
	code, err := g.Generate(func(candidate string) (bool, error) {
		seen = append(seen, candidate)
		return len(seen) < 4, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 candidates drawn, got %d", len(seen))
	}
	if code != seen[len(seen)-1] {
		t.Errorf("expected last candidate %q to be returned, got %q", seen[len(seen)-1], code)
	}
}
