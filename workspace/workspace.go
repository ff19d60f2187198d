/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workspace reads and writes files under a local root directory.
// Names are always relative to the root and may not leave it, including
// through symlinks.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"chainguard.dev/codetools/toolerr"
)

// Files is a workspace rooted at a directory.
type Files struct {
	dir string
}

// New returns Files rooted at dir, which must exist.
func New(dir string) (*Files, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", abs)
	}
	return &Files{dir: abs}, nil
}

// Dir is the absolute workspace root.
func (f *Files) Dir() string { return f.dir }

// Read returns the content of name and its line count.
func (f *Files) Read(name string) (string, int, error) {
	clean, err := local(name)
	if err != nil {
		return "", 0, err
	}

	root, err := os.OpenRoot(f.dir)
	if err != nil {
		return "", 0, fmt.Errorf("opening workspace: %w", err)
	}
	defer root.Close()

	b, err := root.ReadFile(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return "", 0, &toolerr.NotFoundError{Resource: "file " + name, Message: fmt.Sprintf("File %s does not exist", name), Err: err}
	}
	if err != nil {
		return "", 0, fmt.Errorf("reading %s: %w", name, err)
	}
	return string(b), Lines(string(b)), nil
}

// Write replaces name with content, creating parent directories, and returns
// the number of lines written.
func (f *Files) Write(name, content string) (int, error) {
	clean, err := local(name)
	if err != nil {
		return 0, err
	}

	root, err := os.OpenRoot(f.dir)
	if err != nil {
		return 0, fmt.Errorf("opening workspace: %w", err)
	}
	defer root.Close()

	if dir := filepath.Dir(clean); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := root.WriteFile(clean, []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", name, err)
	}
	return Lines(content), nil
}

// Lines counts newline-separated lines; an empty string is one line.
func Lines(s string) int {
	return strings.Count(s, "\n") + 1
}

func local(name string) (string, error) {
	if name == "" {
		return "", toolerr.Invalid("fileName", "must not be empty")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if !filepath.IsLocal(clean) {
		return "", toolerr.Invalid("fileName", "%q is outside the workspace", name)
	}
	return clean, nil
}
