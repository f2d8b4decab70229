// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/codequill/internal/command"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders result payloads for terminal display.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultTerminalWidth),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display,
// returning the original content if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// RESULT PRESENTATION
// =============================================================================

// ShowResult prints a result envelope. Markdown payloads are rendered
// only when stdout is a TTY, so piped output stays clean.
func ShowResult(res command.Result) {
	if res.OK {
		if res.Message != "" {
			fmt.Println(SuccessStyle.Render("[OK] ") + res.Message)
		}
		if res.Payload != "" {
			if IsStdoutTTY() {
				fmt.Print(renderMarkdown(res.Payload))
			} else {
				fmt.Println(res.Payload)
			}
		}
		if res.Meta.Truncated {
			fmt.Println(DimStyle.Render("(context was truncated to fit the budget)"))
		}
		return
	}

	tag := "[" + res.Kind.String() + "]"
	switch res.Kind {
	case command.KindCancelled:
		fmt.Fprintln(os.Stderr, WarningStyle.Render(tag)+" "+res.Message)
	case command.KindNoChanges, command.KindNotConfigured:
		fmt.Fprintln(os.Stderr, DimStyle.Render(tag)+" "+res.Message)
	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(tag)+" "+res.Message)
	}

	if hint := hintFor(res.Kind); hint != "" {
		fmt.Fprintln(os.Stderr, DimStyle.Render("hint: "+hint))
	}
}

// hintFor suggests the next step after a failure.
func hintFor(kind command.Kind) string {
	switch kind {
	case command.KindNotConfigured:
		return "run /setup to configure your API key and model"
	case command.KindUnknownCommand:
		return "commands: " + commandList()
	case command.KindAuthError:
		return "your key was rejected; run /setup to replace it"
	case command.KindRateLimited:
		return "wait a moment and try again"
	case command.KindNoChanges:
		return "make or stage some changes first"
	default:
		return ""
	}
}

func commandList() string {
	parts := make([]string, 0, len(command.Identifiers))
	for _, id := range command.Identifiers {
		parts = append(parts, "/"+id)
	}
	return strings.Join(parts, " ")
}

// ShowHelp prints the command reference.
func ShowHelp() {
	fmt.Println(TitleStyle.Render("Commands"))
	for _, id := range command.Identifiers {
		fmt.Printf("  %-10s %s\n", "/"+id, command.Describe(id))
	}
	fmt.Println(DimStyle.Render("  /help      Show this list"))
	fmt.Println(DimStyle.Render("  /quit      Exit"))
	fmt.Println()
	fmt.Println(DimStyle.Render("Paste code as plain text, then /explain to have it explained."))
}
