// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import "context"

// cleanCommand removes the stored settings. Running it when nothing is
// stored still succeeds.
type cleanCommand struct {
	deps *Deps
}

func (c *cleanCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	removed, err := c.deps.Settings.Destroy()
	if err != nil {
		return FromError(err)
	}
	if kc, ok := c.deps.Client.(interface{ SetKey(string) }); ok {
		kc.SetKey("")
	}
	if !removed {
		return Success("Nothing to clean", "")
	}
	return Success("Stored settings removed", "")
}
