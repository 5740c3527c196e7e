// Package id generates prefixed NanoID identifiers such as request IDs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix prefixes IDs assigned to incoming HTTP requests.
const RequestPrefix = "req"

// maxExternalLen bounds client-supplied IDs accepted by Sanitize.
const maxExternalLen = 64

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "req-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Sanitize returns s if it is safe to echo back in headers and logs:
// non-empty, at most 64 bytes, and drawn from the NanoID alphabet.
// Otherwise it returns "".
func Sanitize(s string) string {
	if s == "" || len(s) > maxExternalLen {
		return ""
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return ""
		}
	}
	return s
}
