// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"

	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/config"
	"github.com/jeranaias/codequill/internal/gemini"
	"github.com/jeranaias/codequill/internal/settings"
)

// =============================================================================
// COMMAND CONTRACT
// =============================================================================

// Command is a single executable slash command. Implementations are
// constructed per invocation by their registered factory, perform no
// work at construction, and keep no state across executions.
type Command interface {
	Execute(ctx context.Context, args []string, sess *Session) Result
}

// Session is the per-REPL-session state a command may consult.
type Session struct {
	// WorkDir is the directory commands operate in.
	WorkDir string

	// Pasted holds the most recent non-command input, used by
	// /explain when no path argument is given.
	Pasted string
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Generator abstracts the generation client so tests can substitute a
// spy or stub.
type Generator interface {
	Generate(ctx context.Context, system, user, model string) (string, error)
	ListModels(ctx context.Context) ([]gemini.ModelInfo, error)
}

// SettingsStore abstracts the persisted user settings.
type SettingsStore interface {
	Exists() bool
	Load() (*settings.Settings, error)
	Save(apiKey, model string) error
	Destroy() (bool, error)
}

// Prompter handles interactive input and progress output during a
// command's execution. ReadSecret must not echo what is typed.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
	Say(msg string)
}

// Deps carries everything a command may need. Factories receive it at
// construction time; commands use only what they need.
type Deps struct {
	Config   *config.Config
	Settings SettingsStore
	Client   Generator
	Git      *collect.Git
	Files    *collect.Files
	Tree     *collect.Tree
	Prompter Prompter
}

// model returns the configured model name, or "" when not set up.
func (d *Deps) model() string {
	s, err := d.Settings.Load()
	if err != nil {
		return ""
	}
	return s.Model
}

// say forwards progress output when a prompter is wired.
func (d *Deps) say(msg string) {
	if d.Prompter != nil {
		d.Prompter.Say(msg)
	}
}
