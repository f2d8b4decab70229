// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/prompt"
	"github.com/jeranaias/codequill/internal/util"
)

// keyFileCandidates are read (bounded) to give the model a sense of
// the project beyond the bare tree. Missing ones are skipped.
var keyFileCandidates = []string{
	"README.md",
	"go.mod",
	"Cargo.toml",
	"package.json",
	"pyproject.toml",
	"Makefile",
}

// keyFileHeadChars bounds how much of each candidate file is included.
const keyFileHeadChars = 2000

// initCommand generates a PROJECT.md overview of the working directory
// from its tree, recent commits, and key file heads.
type initCommand struct {
	deps *Deps
}

func (c *initCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	tree, err := c.deps.Tree.Summarize(sess.WorkDir)
	if err != nil {
		return FromError(err)
	}

	var b strings.Builder
	b.WriteString("Directory tree:\n")
	b.WriteString(tree)

	// Commit history helps but is not required; a fresh directory is
	// still a valid target.
	if commits, err := c.deps.Git.RecentCommits(ctx, 15); err == nil && commits != "" {
		b.WriteString("\n\nRecent commits:\n")
		b.WriteString(commits)
	}

	for _, name := range keyFileCandidates {
		content, err := c.deps.Files.Read(name)
		if err != nil {
			continue
		}
		head, _ := collect.Clamp(content, keyFileHeadChars)
		fmt.Fprintf(&b, "\n\nHead of %s:\n%s", name, head)
	}

	collected, truncated := collect.Clamp(b.String(), c.deps.Config.Limits.DiffBudgetChars)

	system, err := prompt.System("init")
	if err != nil {
		return FromError(err)
	}

	model := c.deps.model()
	c.deps.say("Generating project overview...")
	doc, err := c.deps.Client.Generate(ctx, system, collected, model)
	if err != nil {
		return FromError(err)
	}

	outPath := filepath.Join(sess.WorkDir, "PROJECT.md")
	if err := util.AtomicWriteFile(outPath, []byte(doc+"\n"), 0o644); err != nil {
		return FromError(err)
	}

	res := Success("Wrote "+outPath, outPath)
	res.Meta.Model = model
	res.Meta.Truncated = truncated
	return res
}
