// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/codequill/internal/command"
	"github.com/jeranaias/codequill/internal/util"
)

// REPL is the interactive read-dispatch-render loop.
type REPL struct {
	manager  *command.Manager
	prompter *LinePrompter
	session  *command.Session
}

// NewREPL wires the loop over a manager and prompter. The session
// lives for the whole loop; commands see the same one on every
// dispatch.
func NewREPL(manager *command.Manager, prompter *LinePrompter, workDir string) *REPL {
	return &REPL{
		manager:  manager,
		prompter: prompter,
		session:  &command.Session{WorkDir: workDir},
	}
}

// Run drives the loop until /quit, Ctrl+C at the prompt, or EOF.
func (r *REPL) Run() {
	r.printWelcome()

	for {
		input, err := r.prompter.ReadLine(PromptStyle.Render("codequill> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println()
				return
			}
			// EOF (Ctrl+D) or a closed terminal
			fmt.Println()
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit", "exit", "quit":
			return
		case "/help", "help":
			ShowHelp()
			continue
		}

		if !command.IsCommand(input) {
			// Plain text is stashed for /explain.
			r.session.Pasted = input
			fmt.Println(DimStyle.Render(fmt.Sprintf(
				"Noted %d characters. /explain will use them.", len(input))))
			continue
		}

		r.dispatch(input)
	}
}

// dispatch runs one command under a SIGINT-cancellable context.
func (r *REPL) dispatch(input string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := r.manager.Dispatch(ctx, input, r.session)
	ShowResult(res)
}

func (r *REPL) printWelcome() {
	fmt.Println(TitleStyle.Render("codequill") + DimStyle.Render("  /help for commands, /quit to exit"))
	fmt.Println(DimStyle.Render("Working in " + util.TruncateRunes(r.session.WorkDir, 60)))
	fmt.Println()
}
