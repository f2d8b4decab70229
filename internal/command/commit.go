// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"

	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/prompt"
	"github.com/jeranaias/codequill/internal/util"
)

// commitCommand drafts a commit message from the working diff. It
// never runs git commit; the payload is for the user to apply.
type commitCommand struct {
	deps *Deps
}

func (c *commitCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	diff, staged, err := c.deps.Git.ChangedDiff(ctx)
	if err != nil {
		return FromError(err)
	}

	clamped, truncated := collect.Clamp(diff, c.deps.Config.Limits.DiffBudgetChars)

	system, err := prompt.System("commit")
	if err != nil {
		return FromError(err)
	}

	model := c.deps.model()
	c.deps.say("Drafting commit message...")
	text, err := c.deps.Client.Generate(ctx, system, clamped, model)
	if err != nil {
		return FromError(err)
	}

	source := "staged changes"
	if !staged {
		source = "unstaged changes"
	}
	res := Success("Commit message drafted from "+source, util.StripWrappingQuotes(text))
	res.Meta.Model = model
	res.Meta.Truncated = truncated
	return res
}
