// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package internal contains helpers shared by development tools.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
)

// Repo is a Git working tree.
type Repo struct {
	// Root is the absolute path of the working tree.
	Root string

	repo *git.Repository
}

// Open finds the repository containing dir.
func Open(dir string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", dir, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &Repo{Root: root, repo: r}, nil
}

// EnsureRoot changes the working directory to the root of the repository
// containing it and returns that repository.
func EnsureRoot() (*Repo, error) {
	r, err := Open(".")
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(r.Root); err != nil {
		return nil, err
	}
	return r, nil
}

// HooksDir is where Git looks for hook scripts.
func (r *Repo) HooksDir() string { return filepath.Join(r.Root, ".git", "hooks") }

// StagedFiles returns the slash-separated paths added, modified, renamed or
// copied in the index, sorted.
func (r *Repo) StagedFiles() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, err
	}
	var files []string
	for path, fs := range st {
		switch fs.Staging {
		case git.Added, git.Modified, git.Renamed, git.Copied:
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files, nil
}

// TrackedFiles returns every path in the index that still exists in the
// working tree, sorted.
func (r *Repo) TrackedFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		_, err := os.Lstat(filepath.Join(r.Root, filepath.FromSlash(e.Name)))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, e.Name)
	}
	slices.Sort(files)
	return files, nil
}
