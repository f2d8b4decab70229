// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import "testing"

func TestSystemKnownTemplates(t *testing.T) {
	for _, name := range []string{"commit", "review", "explain", "init"} {
		t.Run(name, func(t *testing.T) {
			text, err := System(name)
			if err != nil {
				t.Fatalf("System(%q) error = %v", name, err)
			}
			if text == "" {
				t.Errorf("System(%q) returned empty template", name)
			}
		})
	}
}

func TestSystemUnknownTemplate(t *testing.T) {
	if _, err := System("nonexistent"); err == nil {
		t.Error("System(\"nonexistent\") expected error")
	}
}

func TestNamesListsAllTemplates(t *testing.T) {
	names := Names()
	if len(names) != 4 {
		t.Fatalf("Names() = %v, want 4 entries", names)
	}
}
