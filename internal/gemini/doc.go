// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the generation client for the Gemini API.
//
// The client wraps a single operation: send a system instruction plus
// user content to a named model and get text back. Failures are
// classified into a small set of sentinel errors so callers can map
// them onto result kinds without inspecting transport details.
//
// Transient failures (network errors, rate limiting) are retried a
// bounded number of times with a short fixed backoff. Authentication
// and unknown-model failures require user action and are never
// retried. The API key appears only in the request header; every
// display path uses the masked form.
package gemini
