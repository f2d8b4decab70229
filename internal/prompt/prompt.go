// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt holds the system prompt templates shipped with the
// binary. Templates are embedded at build time and looked up by the
// command identifier that uses them.
package prompt

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.md
var templates embed.FS

// System returns the system prompt for the given template name.
func System(name string) (string, error) {
	data, err := templates.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown prompt template %q: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Names returns the embedded template names, without extension.
func Names() []string {
	entries, err := templates.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	return names
}
