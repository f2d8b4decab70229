// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings persists per-user agent settings.
//
// Settings are a single record (API key, selected model, timestamps)
// held in a SQLite database under the config directory. Writes happen
// inside one transaction, so a record is replaced atomically or not at
// all. The record is created by /setup, overwritten only by /setup,
// and removed by /clean, which deletes the backing database file.
package settings
