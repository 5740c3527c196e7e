// Package util provides common utility functions.
package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTagName converts user input to the canonical catalog form.
//
// Normalization rules:
//  1. Unicode NFKC (full-width and compatibility forms collapse)
//  2. Trim surrounding whitespace
//  3. Case fold
//
// Examples:
//
//	"Cooking"      → "cooking"
//	"  OUTDOORS "  → "outdoors"
//	"ｔｒａｖｅｌｉｎｇ" → "traveling"
func NormalizeTagName(input string) string {
	s := norm.NFKC.String(input)
	s = strings.TrimSpace(s)
	// Casers carry state, so one is built per call.
	return cases.Fold().String(s)
}

// NormalizeTagNames normalizes every name, drops blanks, and removes
// duplicates while keeping first-seen order.
func NormalizeTagNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := NormalizeTagName(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
