// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// codequill.
//
// Configuration lives in ~/.codequill/config.toml and holds the
// non-secret tuning knobs: generation request limits, context budgets
// and rendering options. Secrets (the API key) and the selected model
// are persisted separately by the settings store.
//
// Load order: built-in defaults, then the TOML file if present, then
// CODEQUILL_* environment overrides, then validation.
package config
