// Package shortcode generates random short link tokens.
package shortcode

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet leaves out characters that are easy to misread (I, l, 1).
const Alphabet = "ABCDEFGHJKLMNOPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz234567890"

// DefaultLength is the token length used for recipe links.
const DefaultLength = 3

// MaxLength caps both the configured length and what Valid accepts.
const MaxLength = 16

// Generator produces random tokens of a fixed length over Alphabet.
type Generator struct {
	length int
}

// NewGenerator returns a generator for tokens of the given length.
// Non-positive lengths fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Length returns the token length.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new random token.
func (g *Generator) Generate() (string, error) {
	token, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("generate short code: %w", err)
	}
	return token, nil
}

// Valid reports whether token is well formed: alphabet characters only,
// at most MaxLength long. The configured length is not enforced, so tokens
// issued under an earlier length setting still resolve.
func (g *Generator) Valid(token string) bool {
	if token == "" || len(token) > MaxLength {
		return false
	}
	for _, c := range token {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}

// Capacity is the number of distinct tokens g can produce.
func (g *Generator) Capacity() uint64 {
	n := uint64(1)
	for i := 0; i < g.length; i++ {
		n *= uint64(len(Alphabet))
	}
	return n
}
