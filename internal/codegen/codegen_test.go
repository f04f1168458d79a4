package codegen_test

import (
	"strings"
	"testing"

	"github.com/jonesrussell/affiliate-tracker/internal/codegen"
)

const testCodeLength = 8

func TestGenerate_Length(t *testing.T) {
	g := codegen.New(testCodeLength)

	code, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(code) != testCodeLength {
		t.Fatalf("expected code of length %d, got %q", testCodeLength, code)
	}
}

func TestGenerate_Alphabet(t *testing.T) {
	const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	g := codegen.New(testCodeLength)

	for i := 0; i < 50; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		for _, c := range code {
			if !strings.ContainsRune(alphanumeric, c) {
				t.Fatalf("code %q contains character outside alphabet: %q", code, c)
			}
		}
	}
}

func TestGenerate_NoImmediateCollisions(t *testing.T) {
	g := codegen.New(testCodeLength)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}

func TestNew_DefaultLength(t *testing.T) {
	g := codegen.New(0)

	code, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(code) != codegen.DefaultLength {
		t.Fatalf("expected default length %d, got %d", codegen.DefaultLength, len(code))
	}
}
