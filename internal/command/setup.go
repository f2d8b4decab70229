// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/codequill/internal/gemini"
	"github.com/jeranaias/codequill/internal/util"
)

// setupAttempts bounds how often each setup step re-prompts before the
// command gives up with InvalidInput.
const setupAttempts = 3

// setupCommand walks the user through API key entry and model choice,
// then overwrites any stored settings.
type setupCommand struct {
	deps *Deps
}

func (c *setupCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	key, res := c.askKey(ctx)
	if res != nil {
		return *res
	}

	model, res := c.askModel(ctx)
	if res != nil {
		return *res
	}

	if err := c.deps.Settings.Save(key, model); err != nil {
		return FromError(err)
	}
	if kc, ok := c.deps.Client.(interface{ SetKey(string) }); ok {
		kc.SetKey(key)
	}

	masked := util.MaskSecret(key)
	return Success(
		fmt.Sprintf("Setup complete: key %s, model %s", masked, model),
		fmt.Sprintf("API key: %s\nModel: %s", masked, model),
	)
}

// askKey reads a non-empty API key. The prompter must not echo it.
func (c *setupCommand) askKey(ctx context.Context) (string, *Result) {
	for attempt := 1; attempt <= setupAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			r := FromError(err)
			return "", &r
		}
		key, err := c.deps.Prompter.ReadSecret("Gemini API key: ")
		if err != nil {
			r := FromError(err)
			return "", &r
		}
		key = strings.TrimSpace(key)
		if key != "" {
			return key, nil
		}
		c.deps.say("Key cannot be empty.")
	}
	r := Fail(KindInvalidInput, "no API key entered after %d attempts", setupAttempts)
	return "", &r
}

// askModel presents the catalog and reads a 1-based choice.
func (c *setupCommand) askModel(ctx context.Context) (string, *Result) {
	var listing strings.Builder
	listing.WriteString("Available models:\n")
	for i, m := range gemini.Catalog {
		fmt.Fprintf(&listing, "  %d. %s\n", i+1, m)
	}
	c.deps.say(listing.String())

	prompt := fmt.Sprintf("Select model [1-%d]: ", len(gemini.Catalog))
	for attempt := 1; attempt <= setupAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			r := FromError(err)
			return "", &r
		}
		line, err := c.deps.Prompter.ReadLine(prompt)
		if err != nil {
			r := FromError(err)
			return "", &r
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && n >= 1 && n <= len(gemini.Catalog) {
			return gemini.Catalog[n-1], nil
		}
		c.deps.say(fmt.Sprintf("Enter a number between 1 and %d.", len(gemini.Catalog)))
	}
	r := Fail(KindInvalidInput, "no model selected after %d attempts", setupAttempts)
	return "", &r
}
