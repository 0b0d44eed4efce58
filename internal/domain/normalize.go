package domain

import (
	"errors"
	"strings"
)

// maxCountDigits bounds user-entered counts so they always fit an INTEGER column.
const maxCountDigits = 9

// Errors returned by ParsePositiveInt.
var (
	ErrNotNumeric     = errors.New("not a whole number")
	ErrNumberTooLarge = errors.New("number too large")
)

// NormalizeHandle prepares a user-supplied identifier for lookup:
//   - trims leading/trailing whitespace
//   - strips one leading '@' sigil
//
// Case is preserved; handle matching is case-sensitive.
func NormalizeHandle(query string) string {
	query = strings.TrimSpace(query)
	query = strings.TrimPrefix(query, "@")
	return strings.TrimSpace(query)
}

// NormalizeName trims a free-text name and compresses runs of spaces.
func NormalizeName(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParsePositiveInt parses a literal made only of ASCII digits. Empty input,
// signs and inner spaces give ErrNotNumeric; a well-formed literal with more
// than nine significant digits gives ErrNumberTooLarge.
func ParsePositiveInt(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrNotNumeric
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, ErrNotNumeric
		}
	}

	digits := strings.TrimLeft(text, "0")
	if len(digits) > maxCountDigits {
		return 0, ErrNumberTooLarge
	}
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n, nil
}
