// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"

	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/prompt"
)

// reviewCommand runs the working diff through the review template.
type reviewCommand struct {
	deps *Deps
}

func (c *reviewCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	diff, staged, err := c.deps.Git.ChangedDiff(ctx)
	if err != nil {
		return FromError(err)
	}

	clamped, truncated := collect.Clamp(diff, c.deps.Config.Limits.DiffBudgetChars)

	system, err := prompt.System("review")
	if err != nil {
		return FromError(err)
	}

	model := c.deps.model()
	c.deps.say("Reviewing changes...")
	text, err := c.deps.Client.Generate(ctx, system, clamped, model)
	if err != nil {
		return FromError(err)
	}

	source := "staged changes"
	if !staged {
		source = "unstaged changes"
	}
	res := Success("Review of "+source, text)
	res.Meta.Model = model
	res.Meta.Truncated = truncated
	return res
}
