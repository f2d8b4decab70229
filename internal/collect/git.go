// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotARepository is returned when the working directory is not
	// inside a git work tree.
	ErrNotARepository = errors.New("not a git repository")

	// ErrNoChanges is returned when a requested diff is empty.
	ErrNoChanges = errors.New("no changes")

	// ErrGitUnavailable is returned when the git binary cannot be found.
	ErrGitUnavailable = errors.New("git not installed")
)

// defaultGitTimeout bounds external git invocations when the caller's
// context carries no deadline.
const defaultGitTimeout = 10 * time.Second

// =============================================================================
// GIT COLLECTOR
// =============================================================================

// Git collects repository context by invoking the external git binary.
type Git struct {
	// WorkDir is the repository path commands run in.
	WorkDir string

	// Timeout bounds each git invocation (default 10s).
	Timeout time.Duration
}

// NewGit creates a git collector rooted at workDir.
func NewGit(workDir string, timeout time.Duration) *Git {
	if timeout <= 0 {
		timeout = defaultGitTimeout
	}
	return &Git{WorkDir: workDir, Timeout: timeout}
}

// run executes a git subcommand and returns its trimmed stdout.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	if _, err := exec.LookPath("git"); err != nil {
		return "", ErrGitUnavailable
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "not a git repository") {
			return "", ErrNotARepository
		}
		return "", fmt.Errorf("git %s failed: %s", args[0], firstStderrLine(msg))
	}

	return strings.TrimRight(stdout.String(), "\n"), nil
}

func firstStderrLine(msg string) string {
	if msg == "" {
		return "unknown error"
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

// IsRepository reports whether WorkDir is inside a git work tree.
func (g *Git) IsRepository(ctx context.Context) bool {
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Diff returns the staged diff when staged is true, otherwise the
// unstaged diff. An empty diff yields ErrNoChanges.
func (g *Git) Diff(ctx context.Context, staged bool) (string, error) {
	if !g.IsRepository(ctx) {
		return "", ErrNotARepository
	}

	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoChanges
	}
	return out, nil
}

// ChangedDiff returns the staged diff, falling back to the unstaged
// diff when nothing is staged. The second return reports whether the
// diff came from the staging area.
func (g *Git) ChangedDiff(ctx context.Context) (string, bool, error) {
	diff, err := g.Diff(ctx, true)
	if err == nil {
		return diff, true, nil
	}
	if !errors.Is(err, ErrNoChanges) {
		return "", false, err
	}

	diff, err = g.Diff(ctx, false)
	if err != nil {
		return "", false, err
	}
	return diff, false, nil
}

// StagedFiles lists the staged file paths, one per line.
func (g *Git) StagedFiles(ctx context.Context) (string, error) {
	if !g.IsRepository(ctx) {
		return "", ErrNotARepository
	}
	return g.run(ctx, "diff", "--cached", "--name-status")
}

// Status returns the short-format status output.
func (g *Git) Status(ctx context.Context) (string, error) {
	if !g.IsRepository(ctx) {
		return "", ErrNotARepository
	}
	return g.run(ctx, "status", "--short")
}

// RecentCommits returns the last n commit subjects, newest first.
// A repository with no commits yet returns an empty string.
func (g *Git) RecentCommits(ctx context.Context, n int) (string, error) {
	if !g.IsRepository(ctx) {
		return "", ErrNotARepository
	}
	out, err := g.run(ctx, "log", "--oneline", "-n", strconv.Itoa(n))
	if err != nil {
		// No commits yet is normal for a fresh repository.
		return "", nil
	}
	return out, nil
}
