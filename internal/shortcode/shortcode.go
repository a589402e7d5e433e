// Package shortcode generates random base62 short codes.
// Generators are safe for concurrent use.
package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// bytes >= maxByte are rejected so every symbol is equally likely
	maxByte = 256 - (256 % len(alphabet))
)

type Generator interface {
	Generate(length int) (string, error)
}

type base62Generator struct{}

// NewBase62 returns a base62 generator backed by crypto/rand.
func NewBase62() Generator {
	return base62Generator{}
}

func (base62Generator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether code only uses the base62 alphabet and has a sane length.
func Valid(code string) bool {
	if len(code) == 0 || len(code) > 32 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}
