// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package collect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Tree summarizes a directory's structure as indented text.
type Tree struct {
	// MaxDepth caps traversal depth below the root.
	MaxDepth int

	// MaxFiles caps the number of entries listed.
	MaxFiles int

	// IgnoreNames are directory/file names skipped entirely.
	IgnoreNames []string
}

// defaultIgnoreNames mirrors the noise directories every project grows.
var defaultIgnoreNames = []string{
	".git",
	"node_modules",
	"__pycache__",
	".venv",
	"vendor",
	"dist",
	"build",
	".idea",
	".vscode",
}

// NewTree creates a tree summarizer with the given bounds.
func NewTree(maxDepth, maxFiles int) *Tree {
	if maxDepth <= 0 {
		maxDepth = 5
	}
	if maxFiles <= 0 {
		maxFiles = 200
	}
	return &Tree{
		MaxDepth:    maxDepth,
		MaxFiles:    maxFiles,
		IgnoreNames: defaultIgnoreNames,
	}
}

func (t *Tree) ignored(name string) bool {
	for _, ig := range t.IgnoreNames {
		if name == ig {
			return true
		}
	}
	return false
}

// Summarize walks root and returns an indented listing bounded by
// MaxDepth and MaxFiles. Truncation is noted with a trailing marker.
func (t *Tree) Summarize(root string) (string, error) {
	var sb strings.Builder
	sb.WriteString(filepath.Base(root))
	sb.WriteString("/\n")

	count := 0
	truncated := false

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > t.MaxDepth || truncated {
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}

		// Directories first, then files, each alphabetical.
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].IsDir() != entries[j].IsDir() {
				return entries[i].IsDir()
			}
			return entries[i].Name() < entries[j].Name()
		})

		for _, e := range entries {
			name := e.Name()
			if t.ignored(name) || strings.HasPrefix(name, ".") {
				continue
			}
			if count >= t.MaxFiles {
				truncated = true
				return
			}

			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(name)
			if e.IsDir() {
				sb.WriteString("/")
			}
			sb.WriteString("\n")
			count++

			if e.IsDir() {
				walk(filepath.Join(dir, name), depth+1)
			}
		}
	}

	walk(root, 1)

	if truncated {
		sb.WriteString("... (listing truncated)\n")
	}
	return sb.String(), nil
}
