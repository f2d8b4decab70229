// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package collect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrFileNotFound is returned when a requested file doesn't exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when a file exceeds the read limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotAFile is returned when the path points at a directory.
	ErrNotAFile = errors.New("path is not a file")
)

// defaultFileMaxBytes caps file reads when no limit is configured.
const defaultFileMaxBytes = 100 * 1024

// Files reads file contents with a size bound.
type Files struct {
	// WorkDir resolves relative paths.
	WorkDir string

	// MaxBytes is the largest file that will be read.
	MaxBytes int64
}

// NewFiles creates a file collector rooted at workDir.
func NewFiles(workDir string, maxBytes int64) *Files {
	if maxBytes <= 0 {
		maxBytes = defaultFileMaxBytes
	}
	return &Files{WorkDir: workDir, MaxBytes: maxBytes}
}

// Read returns the contents of path. Relative paths resolve against
// the collector's working directory.
func (f *Files) Read(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.WorkDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	if info.Size() > f.MaxBytes {
		return "", fmt.Errorf("%w: %s (%d bytes, limit %d)", ErrFileTooLarge, path, info.Size(), f.MaxBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
