// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strings"

// maskPrefixLen is how many leading characters of a secret remain
// visible when masked. Everything else is replaced by a fixed mask so
// the output length reveals nothing about the secret's length.
const maskPrefixLen = 4

// MaskSecret returns a display-safe form of a secret such as an API
// key: at most the first four characters followed by "****". Secrets
// shorter than the prefix are fully masked.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "[not set]"
	}
	if len(s) <= maskPrefixLen {
		return "****"
	}
	return s[:maskPrefixLen] + "...****"
}

// TruncateRunes truncates a string to a maximum number of runes.
// Safe for UTF-8 as it counts characters, not bytes. If the string is
// truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// FirstLine returns the first line of s with trailing whitespace
// removed. Used for one-line previews of multi-line payloads.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, " \t\r")
}

// StripWrappingQuotes removes a single matching pair of surrounding
// double or single quotes. Generation models occasionally quote an
// entire commit message; the quotes are never wanted.
func StripWrappingQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
