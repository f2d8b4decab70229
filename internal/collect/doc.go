// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package collect provides read-only context collectors.
//
// Collectors gather the local material a command sends to the model: a
// git diff, a file's contents, or a directory tree summary. Each
// collector produces a bounded text blob or a classified error; none
// of them mutate anything, and none retry on failure.
//
// # Collectors
//
//   - Git: staged/unstaged diffs, status, recent commits (external git process)
//   - Files: bounded file reads
//   - Tree: directory structure summaries
//   - Clamp: character-budget truncation with an explicit marker
package collect
