// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/gemini"
	"github.com/jeranaias/codequill/internal/settings"
)

// =============================================================================
// FAILURE KINDS
// =============================================================================

// Kind classifies why an execution failed. KindNone means success.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidInput
	KindUnknownCommand
	KindNotConfigured
	KindFileNotFound
	KindNotARepository
	KindNoChanges
	KindAuthError
	KindRateLimited
	KindModelUnavailable
	KindNetworkError
	KindEmptyResponse
	KindCancelled
	KindInternalError
)

// String returns the kind's stable name for logs and tests.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInvalidInput:
		return "InvalidInput"
	case KindUnknownCommand:
		return "UnknownCommand"
	case KindNotConfigured:
		return "NotConfigured"
	case KindFileNotFound:
		return "FileNotFound"
	case KindNotARepository:
		return "NotARepository"
	case KindNoChanges:
		return "NoChanges"
	case KindAuthError:
		return "AuthError"
	case KindRateLimited:
		return "RateLimited"
	case KindModelUnavailable:
		return "ModelUnavailable"
	case KindNetworkError:
		return "NetworkError"
	case KindEmptyResponse:
		return "EmptyResponse"
	case KindCancelled:
		return "Cancelled"
	case KindInternalError:
		return "InternalError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// =============================================================================
// RESULT ENVELOPE
// =============================================================================

// Meta carries execution metadata alongside the payload.
type Meta struct {
	// Model is the model that produced the payload, if any.
	Model string

	// Truncated is true when collected context was clamped to the
	// configured budget before generation.
	Truncated bool

	// InvocationID uniquely identifies this execution.
	InvocationID string
}

// Result is the uniform outcome of a dispatched command.
type Result struct {
	// OK is true on success; Kind is KindNone exactly then.
	OK bool

	// Kind classifies the failure when OK is false.
	Kind Kind

	// Message is a short human-readable status or error line.
	Message string

	// Payload is the generated or collected content, typically
	// markdown, empty on failure.
	Payload string

	// Meta carries model name, truncation flag, and invocation ID.
	Meta Meta
}

// Success builds a successful result with the given payload.
func Success(message, payload string) Result {
	return Result{
		OK:      true,
		Message: message,
		Payload: payload,
		Meta:    Meta{InvocationID: uuid.NewString()},
	}
}

// Fail builds a failed result of the given kind.
func Fail(kind Kind, format string, args ...any) Result {
	return Result{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Meta:    Meta{InvocationID: uuid.NewString()},
	}
}

// FromError classifies an error from a collector, the settings store,
// or the generation client into a failed Result.
func FromError(err error) Result {
	return Fail(Classify(err), "%s", err.Error())
}

// Classify maps an error to its failure kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, gemini.ErrNotConfigured), errors.Is(err, settings.ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, gemini.ErrAuth):
		return KindAuthError
	case errors.Is(err, gemini.ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, gemini.ErrModelUnavailable):
		return KindModelUnavailable
	case errors.Is(err, gemini.ErrNetwork):
		return KindNetworkError
	case errors.Is(err, gemini.ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, collect.ErrNotARepository):
		return KindNotARepository
	case errors.Is(err, collect.ErrNoChanges):
		return KindNoChanges
	case errors.Is(err, collect.ErrFileNotFound), errors.Is(err, collect.ErrNotAFile):
		return KindFileNotFound
	case errors.Is(err, collect.ErrFileTooLarge):
		return KindInvalidInput
	default:
		return KindInternalError
	}
}
