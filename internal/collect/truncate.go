// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package collect

// TruncationMarker is appended whenever collected text is cut to fit
// a budget. Results carry the truncation flag in their metadata so a
// generated answer is never silently presented as covering the full
// input.
const TruncationMarker = "\n... [truncated]"

// Clamp cuts text to at most budget characters, appending the
// truncation marker when a cut happens. The marker counts against the
// budget. It reports whether truncation occurred.
func Clamp(text string, budget int) (string, bool) {
	if budget <= 0 || len(text) <= budget {
		return text, false
	}

	cut := budget - len(TruncationMarker)
	if cut < 0 {
		cut = 0
	}

	// Back off to a rune boundary so a multi-byte character is never
	// split mid-sequence.
	for cut > 0 && (text[cut]&0xC0) == 0x80 {
		cut--
	}

	return text[:cut] + TruncationMarker, true
}
