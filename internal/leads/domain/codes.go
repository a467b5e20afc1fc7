// Package domain holds the pure rules of the BD pipeline: identifier codes,
// mobile overlap, capacity arithmetic, status and assignment history,
// handover classification and aging. It has no storage or HTTP dependencies.
package domain

import (
	"errors"
	"strconv"
	"strings"
)

const (
	LeadPrefix  = "BD/Lead"
	GroupPrefix = "BD/Group"
)

// ErrMalformedCode is returned when an identifier is neither a code for the
// expected prefix nor a bare positive number.
var ErrMalformedCode = errors.New("malformed identifier")

// FormatCode renders the human-readable code for sequence n.
func FormatCode(prefix string, n int64) string {
	return prefix + "/" + strconv.FormatInt(n, 10)
}

// ParseCodeSuffix extracts the numeric suffix of code. The prefix is matched
// case-insensitively.
func ParseCodeSuffix(prefix, code string) (int64, bool) {
	rest, ok := cutPrefixFold(strings.TrimSpace(code), prefix+"/")
	if !ok {
		return 0, false
	}
	return parsePositive(rest)
}

// NextCode returns prefix/(max+1) over the suffixes found in existing, or
// prefix/1 when none match.
func NextCode(prefix string, existing []string) string {
	var highest int64
	for _, code := range existing {
		if n, ok := ParseCodeSuffix(prefix, code); ok && n > highest {
			highest = n
		}
	}
	return FormatCode(prefix, highest+1)
}

// ResolveCode turns a client-supplied identifier into its canonical code.
// Accepted forms are "BD/Lead/7", "bd/lead/7" and "7".
func ResolveCode(prefix, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if n, ok := parsePositive(trimmed); ok {
		return FormatCode(prefix, n), nil
	}
	if n, ok := ParseCodeSuffix(prefix, trimmed); ok {
		return FormatCode(prefix, n), nil
	}
	return "", ErrMalformedCode
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func parsePositive(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
