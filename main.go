// codequill - a terminal coding assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jeranaias/codequill/internal/cli"
	"github.com/jeranaias/codequill/internal/collect"
	"github.com/jeranaias/codequill/internal/command"
	"github.com/jeranaias/codequill/internal/config"
	"github.com/jeranaias/codequill/internal/gemini"
	"github.com/jeranaias/codequill/internal/settings"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "cannot create config directory: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %v\n", err)
		return 1
	}

	configDir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot resolve config directory: %v\n", err)
		return 1
	}
	setupLogging(configDir)

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot determine working directory: %v\n", err)
		return 1
	}

	store := settings.Open(settings.DefaultPath(configDir))
	defer store.Close()

	// The key is loaded once; /setup and /clean update the client
	// through SetKey.
	apiKey := ""
	if s, err := store.Load(); err == nil {
		apiKey = s.APIKey
	}
	client := gemini.NewClient(cfg.Gemini, apiKey)

	prompter := cli.NewLinePrompter(configDir)
	defer prompter.Close()

	deps := &command.Deps{
		Config:   cfg,
		Settings: store,
		Client:   client,
		Git:      collect.NewGit(workDir, time.Duration(cfg.Limits.GitTimeoutSecs)*time.Second),
		Files:    collect.NewFiles(workDir, cfg.Limits.FileMaxBytes),
		Tree:     collect.NewTree(cfg.Limits.TreeMaxDepth, cfg.Limits.TreeMaxFiles),
		Prompter: prompter,
	}

	registry := command.NewRegistry()
	if err := registry.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "command registry: %v\n", err)
		return 1
	}
	manager := command.NewManager(registry, deps)

	// One-shot mode: codequill commit [args...]
	if len(os.Args) > 1 {
		return runOnce(manager, workDir, os.Args[1:])
	}

	cli.NewREPL(manager, prompter, workDir).Run()
	return 0
}

// runOnce dispatches a single command given as program arguments and
// exits, for use from scripts and git hooks.
func runOnce(manager *command.Manager, workDir string, args []string) int {
	input := "/" + strings.Join(args, " ")
	sess := &command.Session{WorkDir: workDir}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := manager.Dispatch(ctx, input, sess)
	cli.ShowResult(res)
	if res.OK {
		return 0
	}
	return 1
}

// setupLogging sends the standard logger to a file under the config
// directory. Log output never carries secrets; the client logs only
// masked keys.
func setupLogging(configDir string) {
	path := filepath.Join(configDir, "codequill.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
	log.Printf("codequill %s (%s, built %s) starting", Version, GitCommit, BuildDate)
}
