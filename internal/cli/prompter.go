// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// historyFileName is kept under the config directory with 0600 perms.
const historyFileName = "history"

// LinePrompter reads interactive input with history and line editing,
// and reads secrets without echo.
type LinePrompter struct {
	line        *liner.State
	historyFile string
}

// NewLinePrompter creates a prompter with history persisted under
// configDir. An empty configDir disables history persistence.
func NewLinePrompter(configDir string) *LinePrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	p := &LinePrompter{line: line}
	if configDir != "" {
		p.historyFile = filepath.Join(configDir, historyFileName)
		p.loadHistory()
	}
	return p
}

func (p *LinePrompter) loadHistory() {
	if f, err := os.Open(p.historyFile); err == nil {
		p.line.ReadHistory(f)
		f.Close()
	}
}

func (p *LinePrompter) saveHistory() {
	if p.historyFile == "" {
		return
	}
	f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	p.line.WriteHistory(f)
}

// ReadLine reads one line with history navigation and line editing.
func (p *LinePrompter) ReadLine(prompt string) (string, error) {
	input, err := p.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		p.line.AppendHistory(input)
	}
	return input, nil
}

// ReadSecret reads a line without echoing it and without recording it
// in history. Falls back to a liner prompt when stdin is not a
// terminal, which only happens under test harnesses.
func (p *LinePrompter) ReadSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.line.Prompt(prompt)
	}

	// liner holds the terminal in raw mode; release it around the
	// password read so x/term controls echo.
	p.line.Close()
	defer func() {
		p.line = liner.NewLiner()
		p.line.SetCtrlCAborts(true)
		p.loadHistory()
	}()

	fmt.Print(prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Say prints a progress or informational line.
func (p *LinePrompter) Say(msg string) {
	fmt.Println(msg)
}

// Close persists history and releases the terminal.
func (p *LinePrompter) Close() {
	p.saveHistory()
	p.line.Close()
}
