// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"fmt"

	"github.com/jeranaias/codequill/internal/prompt"
)

// explainCommand explains a file given by path, falling back to the
// session's last pasted text when no path is supplied.
type explainCommand struct {
	deps *Deps
}

func (c *explainCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	var subject, label string

	switch {
	case len(args) > 0:
		content, err := c.deps.Files.Read(args[0])
		if err != nil {
			return FromError(err)
		}
		subject = fmt.Sprintf("File: %s\n\n%s", args[0], content)
		label = args[0]

	case sess != nil && sess.Pasted != "":
		subject = sess.Pasted
		label = "pasted text"

	default:
		return Fail(KindInvalidInput, "nothing to explain: give a file path or paste text first")
	}

	system, err := prompt.System("explain")
	if err != nil {
		return FromError(err)
	}

	model := c.deps.model()
	c.deps.say("Explaining " + label + "...")
	text, err := c.deps.Client.Generate(ctx, system, subject, model)
	if err != nil {
		return FromError(err)
	}

	res := Success("Explanation of "+label, text)
	res.Meta.Model = model
	return res
}
