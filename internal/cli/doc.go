// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the interactive surface: a liner-based REPL that
// feeds input lines to the command manager, a prompter for the
// interactive setup flow, and terminal-aware rendering of result
// envelopes (markdown through glamour on a TTY, plain text when
// piped).
package cli
