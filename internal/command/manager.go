// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"log"
	"sync/atomic"
)

// Manager dispatches raw input lines to commands. One execution may be
// in flight at a time per manager.
type Manager struct {
	registry *Registry
	deps     *Deps
	inFlight atomic.Bool
}

// NewManager creates a manager over the given registry and
// dependencies. The registry must already be validated.
func NewManager(registry *Registry, deps *Deps) *Manager {
	return &Manager{registry: registry, deps: deps}
}

// Dispatch parses raw input, enforces the configured-state check, and
// executes the matched command. All outcomes, including panics inside
// a command, come back as a Result.
func (m *Manager) Dispatch(ctx context.Context, raw string, sess *Session) (res Result) {
	id, args, ok := parseInput(raw)
	if !ok || id == "" {
		return Fail(KindInvalidInput, "not a command: input must start with /")
	}

	factory := m.registry.Get(id)
	if factory == nil {
		return Fail(KindUnknownCommand, "unknown command /%s", id)
	}

	// Commands that talk to the API or read settings are not even
	// constructed until setup has run.
	if requiresSetup(id) && !m.deps.Settings.Exists() {
		return Fail(KindNotConfigured, "not configured: run /setup first")
	}

	if !m.inFlight.CompareAndSwap(false, true) {
		return Fail(KindInternalError, "command already running")
	}
	defer m.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Command /%s panicked: %v", id, r)
			res = Fail(KindInternalError, "internal error in /%s", id)
		}
	}()

	res = factory(m.deps).Execute(ctx, args, sess)

	if ctx.Err() != nil && !res.OK && res.Kind != KindCancelled {
		return Fail(KindCancelled, "cancelled")
	}
	return res
}
