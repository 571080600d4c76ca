// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"
	"golang.org/x/term"

	"go.astrophena.name/exzip/cli"
	"go.astrophena.name/exzip/devtools/internal"
	"go.astrophena.name/exzip/hookconfig"
	"go.astrophena.name/exzip/logger"
)

const hookShellScript = `#!/bin/sh
echo "==> Running pre-commit check..."
go tool pre-commit
`

// sniffLen is how much of a file is read to tell text from binary.
const sniffLen = 8000

func main() { cli.Main(new(app)) }

type app struct {
	allFiles bool
	config   string
}

func (a *app) Flags(f *flag.FlagSet) {
	f.BoolVar(&a.allFiles, "all-files", false, "Run on all tracked files instead of the staged ones.")
	f.StringVar(&a.config, "config", hookconfig.FileName, "Configuration `file`, relative to the repository root.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	repo, err := internal.EnsureRoot()
	if err != nil {
		return err
	}
	c, err := hookconfig.Load(a.config)
	if err != nil {
		return err
	}

	if env.Getenv("CI") != "true" {
		if err := installHook(repo.HooksDir()); err != nil {
			return err
		}
	}

	var files []string
	if a.allFiles {
		files, err = repo.TrackedFiles()
	} else {
		files, err = repo.StagedFiles()
	}
	if err != nil {
		return err
	}
	files = c.Filter(files)

	for _, r := range c.Repos {
		if r.Repo != hookconfig.LocalRepo {
			logger.Debug(ctx, "skipping repository", slog.String("repo", r.Repo))
		}
	}

	hooks, err := selectHooks(c.Local(), env.Args)
	if err != nil {
		return err
	}

	width := 0
	if f, ok := env.Stdout.(*os.File); ok && cli.IsTerminalWriter(f) {
		width, _, _ = term.GetSize(int(f.Fd()))
	}

	tags := make(map[string][]string)
	var (
		ran, skipped int
		failures     []error
	)
	for i, h := range hooks {
		fmt.Fprintln(env.Stdout, progressMessage(i+1, len(hooks), h.DisplayName(), width))
		if h.Language != "system" {
			logger.Warn(ctx, "unsupported hook language", slog.String("hook", h.ID), slog.String("language", h.Language))
			skipped++
			continue
		}

		var matched []string
		for _, f := range files {
			t, ok := tags[f]
			if !ok {
				t = fileTags(f)
				tags[f] = t
			}
			if h.Matches(f, t) {
				matched = append(matched, f)
			}
		}
		if len(matched) == 0 && !h.AlwaysRun {
			logger.Debug(ctx, "no files to check", slog.String("hook", h.ID))
			skipped++
			continue
		}

		if err := runHook(ctx, repo.Root, h, matched); err != nil {
			if c.FailFast || ctx.Err() != nil {
				return err
			}
			failures = append(failures, err)
			continue
		}
		ran++
	}

	fmt.Fprintf(env.Stdout, "%d passed, %d failed, %d skipped\n", ran, len(failures), skipped)
	return errors.Join(failures...)
}

func installHook(dir string) error {
	hookPath := filepath.Join(dir, "pre-commit")
	if _, err := os.Stat(hookPath); !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(hookPath, []byte(hookShellScript), 0o755)
}

// selectHooks returns the hooks named by ids, or all hooks if ids is empty.
func selectHooks(hooks []hookconfig.Hook, ids []string) ([]hookconfig.Hook, error) {
	if len(ids) == 0 {
		return hooks, nil
	}
	var selected []hookconfig.Hook
	for _, id := range ids {
		i := slices.IndexFunc(hooks, func(h hookconfig.Hook) bool { return h.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: no local hook %q", cli.ErrInvalidArgs, id)
		}
		selected = append(selected, hooks[i])
	}
	return selected, nil
}

// fileTags returns the type tags of the file at the slash-separated path.
func fileTags(path string) []string {
	tags := []string{"file"}

	head, err := readHead(filepath.FromSlash(path))
	if err != nil {
		return tags
	}
	if enry.IsBinary(head) {
		tags = append(tags, "binary")
	} else {
		tags = append(tags, "text")
	}
	if lang := enry.GetLanguage(filepath.Base(path), head); lang != "" {
		tags = append(tags, strings.ToLower(lang))
	}
	return tags
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func runHook(ctx context.Context, dir string, h hookconfig.Hook, files []string) error {
	args, err := h.Command()
	if err != nil {
		return err
	}
	if h.PassesFilenames() {
		args = append(args, files...)
	}

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	logger.Debug(ctx, "running hook", slog.String("hook", h.ID), slog.Any("args", args))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("hook %q failed: %v:\n%v", h.ID, err, buf.String())
	}
	if h.Verbose && buf.Len() > 0 {
		logger.Info(ctx, "hook output", slog.String("hook", h.ID), slog.String("output", buf.String()))
	}
	return nil
}

// progressMessage formats the line announcing a hook, shortened to fit in
// width columns if width is positive. Each rune of name counts as a column.
func progressMessage(current, total int, name string, width int) string {
	prefix := fmt.Sprintf("[%d/%d] Running hook ", current, total)
	if width <= 0 || len(prefix)+utf8.RuneCountInString(name) <= width {
		return prefix + name
	}
	room := width - len(prefix)
	switch {
	case room <= 0:
		return prefix
	case room <= len("..."):
		return prefix + firstRunes(name, room)
	}
	return prefix + firstRunes(name, room-len("...")) + "..."
}

// firstRunes returns the first n runes of s.
func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
