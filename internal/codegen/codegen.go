// Package codegen produces short, unguessable tracking codes.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// alphabet is the 62-symbol code alphabet. At the default length of 8 a
// code carries just over 47 bits of entropy, which makes brute-force
// guessing infeasible while keeping URLs short.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the code length used when none is configured.
const DefaultLength = 8

// Generator produces random tracking codes. It is pure: uniqueness is
// enforced by the link repository's unique index, not here.
type Generator struct {
	length int
}

// New creates a Generator producing codes of the given length.
// Non-positive lengths fall back to DefaultLength.
func New(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns a new random code drawn from the code alphabet.
func (g *Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	code := make([]byte, g.length)

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}

	return string(code), nil
}
