// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"go.astrophena.name/exzip/cli"
	"go.astrophena.name/exzip/internal/config"
	"go.astrophena.name/exzip/internal/extract"
	"go.astrophena.name/exzip/internal/prompt"
	"go.astrophena.name/exzip/logger"
	"go.astrophena.name/exzip/zipenc"
)

func main() { cli.Main(new(app)) }

type app struct {
	encoding   string
	yes, no    bool
	configPath string
}

func (a *app) Flags(f *flag.FlagSet) {
	f.StringVar(&a.encoding, "O", "", "Decode non-UTF-8 member names as `encoding`.")
	f.BoolVar(&a.yes, "y", false, "Replace existing directories without asking.")
	f.BoolVar(&a.no, "n", false, "Never replace existing directories.")
	f.StringVar(&a.configPath, "config", "", "Read defaults from `file`.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	opts, err := a.options(ctx, env)
	if err != nil {
		return err
	}

	if len(env.Args) == 0 {
		return fmt.Errorf("%w: no archives given", cli.ErrInvalidArgs)
	}
	// Check everything up front, so a typo in the last argument doesn't
	// leave the first archives extracted.
	for _, path := range env.Args {
		if err := checkArchive(path); err != nil {
			return err
		}
	}

	x, err := extract.New(opts)
	if err != nil {
		return err
	}
	for _, path := range env.Args {
		if err := x.Extract(ctx, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (a *app) options(ctx context.Context, env *cli.Env) (extract.Options, error) {
	var opts extract.Options

	if a.yes && a.no {
		return opts, fmt.Errorf("%w: -y and -n are mutually exclusive", cli.ErrInvalidArgs)
	}

	path, mustExist := a.configPath, a.configPath != ""
	if path == "" {
		var err error
		path, err = config.Path(env.Getenv)
		if err != nil {
			logger.Debug(ctx, "no config directory", slog.Any("err", err))
		}
	}
	cfg := new(config.Config)
	if path != "" {
		var err error
		if cfg, err = config.Load(path, mustExist); err != nil {
			return opts, err
		}
	}

	encName := a.encoding
	if encName == "" {
		encName = cfg.Encoding
	}
	if encName != "" {
		enc, ok := zipenc.Lookup(encName)
		if !ok {
			return opts, fmt.Errorf("unknown encoding %s", encName)
		}
		opts.Encoding = enc
	}
	for _, name := range cfg.Candidates {
		enc, ok := zipenc.Lookup(name)
		if !ok {
			return opts, fmt.Errorf("config: unknown encoding %s", name)
		}
		opts.Detect.Candidates = append(opts.Detect.Candidates, enc)
	}
	opts.Detect.Guess = cfg.Guess
	opts.Ignore = cfg.Ignore
	opts.TempPrefix = cfg.TempPrefix

	replace, err := extract.ParseReplace(cfg.Replace)
	if err != nil {
		return opts, fmt.Errorf("config: %w", err)
	}
	switch {
	case a.yes:
		replace = extract.ReplaceAlways
	case a.no:
		replace = extract.ReplaceNever
	}
	opts.Replace = replace

	p := &prompt.Prompt{In: env.Stdin, Out: env.Stdout}
	opts.Confirm = func(ctx context.Context, question string) (bool, error) {
		return p.Confirm(ctx, question, false)
	}
	opts.Stdout = env.Stdout
	return opts, nil
}

// argError reports a bad archive argument. It prints as just the message but
// matches [cli.ErrInvalidArgs].
type argError struct{ msg string }

func (e *argError) Error() string { return e.msg }
func (e *argError) Unwrap() error { return cli.ErrInvalidArgs }

func checkArchive(path string) error {
	if _, ok := extract.Target(path); !ok {
		return &argError{"Bad filename " + path}
	}
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &argError{"Not found " + path}
	}
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return &argError{"Not a file " + path}
	}
	return nil
}
