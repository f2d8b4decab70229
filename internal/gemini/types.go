// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import "errors"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuth indicates the key was rejected (invalid or revoked).
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelUnavailable indicates the requested model does not exist
	// or is not accessible with this key.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrNetwork indicates a transport-level failure or server error.
	ErrNetwork = errors.New("network error")

	// ErrEmptyResponse indicates the API answered without any text.
	ErrEmptyResponse = errors.New("empty response")
)

// =============================================================================
// MODEL CATALOG
// =============================================================================

// Catalog is the fixed, ordered set of models offered during setup.
// Order matters: setup presents these with 1-based indices.
var Catalog = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
}

// InCatalog reports whether name is one of the offered models.
func InCatalog(name string) bool {
	for _, m := range Catalog {
		if m == name {
			return true
		}
	}
	return false
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// part is a single content fragment.
type part struct {
	Text string `json:"text"`
}

// content is a role-tagged sequence of parts.
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

// generateResponse is the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// text returns the concatenated candidate text, or "" if none.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

// apiErrorResponse is the error envelope the API returns.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	InputLimit  int    `json:"inputTokenLimit"`
	OutputLimit int    `json:"outputTokenLimit"`
}

// modelsResponse is the ListModels response body.
type modelsResponse struct {
	Models []ModelInfo `json:"models"`
}
