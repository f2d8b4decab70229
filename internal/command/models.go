// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/codequill/internal/gemini"
)

// modelsCommand lists the model catalog, marking the configured one,
// and annotates availability when the API answers in time.
type modelsCommand struct {
	deps *Deps
}

func (c *modelsCommand) Execute(ctx context.Context, args []string, sess *Session) Result {
	configured := c.deps.model()

	// Availability is best effort: an unreachable API degrades the
	// listing to the built-in catalog, it never fails the command.
	available := c.fetchAvailable(ctx)

	nameWidth := 0
	for _, m := range gemini.Catalog {
		if w := runewidth.StringWidth(m); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	b.WriteString("| Model | Status |\n|---|---|\n")
	for _, m := range gemini.Catalog {
		status := ""
		if available != nil {
			if available[m] {
				status = "available"
			} else {
				status = "not listed"
			}
		}
		name := runewidth.FillRight(m, nameWidth)
		if m == configured {
			b.WriteString("| **" + name + "** (configured) | " + status + " |\n")
		} else {
			b.WriteString("| " + name + " | " + status + " |\n")
		}
	}

	return Success("Model catalog", b.String())
}

// fetchAvailable asks the API which models this key can use. Returns
// nil when the call is impossible or fails.
func (c *modelsCommand) fetchAvailable(ctx context.Context) map[string]bool {
	if !c.deps.Settings.Exists() {
		return nil
	}
	listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	models, err := c.deps.Client.ListModels(listCtx)
	if err != nil {
		log.Printf("Model listing unavailable: %v", err)
		return nil
	}
	available := make(map[string]bool, len(models))
	for _, m := range models {
		// API names arrive as "models/<name>".
		available[strings.TrimPrefix(m.Name, "models/")] = true
	}
	return available
}
