// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"fmt"
	"sort"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Command identifiers. The set is closed: the registry validates at
// startup that exactly these are registered.
const (
	IDSetup   = "setup"
	IDModels  = "models"
	IDInit    = "init"
	IDCommit  = "commit"
	IDReview  = "review"
	IDExplain = "explain"
	IDClean   = "clean"
)

// Identifiers is the closed set of valid command names, in the order
// they appear in help output.
var Identifiers = []string{
	IDSetup,
	IDModels,
	IDInit,
	IDCommit,
	IDReview,
	IDExplain,
	IDClean,
}

// descriptions maps identifiers to their one-line help text.
var descriptions = map[string]string{
	IDSetup:   "Configure API key and model",
	IDModels:  "List available models",
	IDInit:    "Generate a PROJECT.md overview for this directory",
	IDCommit:  "Draft a commit message from the current diff",
	IDReview:  "Review the current diff",
	IDExplain: "Explain a file or the last pasted text",
	IDClean:   "Remove stored settings",
}

// Describe returns the help text for an identifier.
func Describe(id string) string {
	return descriptions[id]
}

// requiresSetup reports whether id needs stored settings before it can
// be constructed. setup and clean must work in the unconfigured state.
func requiresSetup(id string) bool {
	return id != IDSetup && id != IDClean
}

// =============================================================================
// REGISTRY
// =============================================================================

// Factory constructs a command instance for one invocation.
type Factory func(*Deps) Command

// Registry maps identifiers to command factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(IDSetup, func(d *Deps) Command { return &setupCommand{deps: d} })
	r.Register(IDModels, func(d *Deps) Command { return &modelsCommand{deps: d} })
	r.Register(IDInit, func(d *Deps) Command { return &initCommand{deps: d} })
	r.Register(IDCommit, func(d *Deps) Command { return &commitCommand{deps: d} })
	r.Register(IDReview, func(d *Deps) Command { return &reviewCommand{deps: d} })
	r.Register(IDExplain, func(d *Deps) Command { return &explainCommand{deps: d} })
	r.Register(IDClean, func(d *Deps) Command { return &cleanCommand{deps: d} })
	return r
}

// Register adds a factory for id. Registering the same identifier
// twice is a programming error and panics.
func (r *Registry) Register(id string, f Factory) {
	if _, dup := r.factories[id]; dup {
		panic(fmt.Sprintf("command %q registered twice", id))
	}
	r.factories[id] = f
}

// Get returns the factory for id, or nil if unknown.
func (r *Registry) Get(id string) Factory {
	return r.factories[id]
}

// All returns the registered identifiers, sorted.
func (r *Registry) All() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the registry against the closed identifier set.
// Called once at startup; a mismatch is a build defect.
func (r *Registry) Validate() error {
	want := make(map[string]bool, len(Identifiers))
	for _, id := range Identifiers {
		want[id] = true
		if r.factories[id] == nil {
			return fmt.Errorf("command %q not registered", id)
		}
	}
	for id := range r.factories {
		if !want[id] {
			return fmt.Errorf("unexpected command %q registered", id)
		}
	}
	return nil
}
