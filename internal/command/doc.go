// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package command implements the slash command pipeline: a registry of
// command factories keyed by a closed identifier set, an argument
// parser with quote grouping, and a manager that dispatches raw input
// through a configured-state check to a freshly constructed command.
//
// Every execution, success or failure, produces a Result envelope with
// a classified failure kind, so the presentation layer never inspects
// raw errors. Commands are constructed per invocation and keep no
// state between runs; interactive flow (setup's key and model prompts)
// happens through the Prompter the command receives in its
// dependencies.
package command
