// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for codequill.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe replace-on-write file persistence
//   - MaskSecret: fixed-prefix masking for API keys and other secrets
//   - TruncateRunes: rune-aware string truncation for previews
package util
