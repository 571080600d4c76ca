// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package extract unpacks ZIP archives into a directory named after the
// archive, dropping a redundant top-level directory.
package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"go.astrophena.name/exzip/logger"
	"go.astrophena.name/exzip/zipenc"
)

// ErrInterrupted is returned when the context is canceled mid-extraction.
// It always wraps the context error as well.
var ErrInterrupted = errors.New("interrupted")

// DefaultTempPrefix prefixes staging directories created next to archives.
const DefaultTempPrefix = "exzip-"

// copyBufSize is the chunk size between cancellation checks.
const copyBufSize = 128 << 10

// Replace says what to do when the target directory already exists.
type Replace int

// Replace policies.
const (
	ReplaceAsk Replace = iota
	ReplaceAlways
	ReplaceNever
)

// ParseReplace parses "ask", "always" or "never". Empty means ask.
func ParseReplace(s string) (Replace, error) {
	switch strings.ToLower(s) {
	case "", "ask":
		return ReplaceAsk, nil
	case "always":
		return ReplaceAlways, nil
	case "never":
		return ReplaceNever, nil
	}
	return 0, fmt.Errorf("unknown replace policy %q", s)
}

// Options configure an [Extractor].
type Options struct {
	// Encoding is used for names without the UTF-8 flag. The zero value
	// means detect it per archive.
	Encoding zipenc.Encoding
	// Detect tunes encoding detection.
	Detect zipenc.DetectOptions
	// Ignore lists extra glob patterns of members to skip.
	Ignore []string
	// Replace is the policy for existing targets.
	Replace Replace
	// Confirm asks the user a yes/no question. Required for ReplaceAsk.
	Confirm func(ctx context.Context, question string) (bool, error)
	// TempPrefix defaults to DefaultTempPrefix.
	TempPrefix string
	// Stdout receives progress lines. Nil discards them.
	Stdout io.Writer
}

// Extractor extracts archives. It is safe to reuse, but not concurrently.
type Extractor struct {
	opts    Options
	matcher *Matcher
	out     io.Writer
	buf     []byte
}

// New returns an Extractor configured by opts.
func New(opts Options) (*Extractor, error) {
	m, err := NewMatcher(opts.Ignore...)
	if err != nil {
		return nil, err
	}
	if opts.TempPrefix == "" {
		opts.TempPrefix = DefaultTempPrefix
	}
	if opts.Replace == ReplaceAsk && opts.Confirm == nil {
		return nil, errors.New("extract: Confirm is required to ask before replacing")
	}
	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	return &Extractor{opts: opts, matcher: m, out: out}, nil
}

// Target returns the directory an archive is extracted into: its path
// without the extension. It reports false if the name has no extension.
func Target(zipPath string) (string, bool) {
	ext := filepath.Ext(zipPath)
	base := filepath.Base(zipPath)
	if ext == "" || ext == base {
		return "", false
	}
	return strings.TrimSuffix(zipPath, ext), true
}

// Extract extracts the archive at zipPath next to it, asking according to
// the replace policy if the target already exists. Declining is not an
// error.
func (x *Extractor) Extract(ctx context.Context, zipPath string) error {
	x.printf("unzip %s\n", zipPath)

	target, ok := Target(zipPath)
	if !ok {
		return fmt.Errorf("bad filename %s", zipPath)
	}

	if _, err := os.Lstat(target); err == nil {
		x.printf("Already exists: %s\n", target)
		replace, err := x.shouldReplace(ctx)
		if err != nil {
			return err
		}
		if !replace {
			logger.Debug(ctx, "keeping existing directory", slog.String("target", target))
			return nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return x.ExtractInto(ctx, zipPath, target)
}

func (x *Extractor) shouldReplace(ctx context.Context) (bool, error) {
	switch x.opts.Replace {
	case ReplaceAlways:
		return true, nil
	case ReplaceNever:
		return false, nil
	}
	return x.opts.Confirm(ctx, "Replace?")
}

// ExtractInto extracts the archive at zipPath into target, replacing
// target if it exists. The archive is unpacked into a staging directory
// next to zipPath first, so target is only touched after everything was
// extracted.
func (x *Extractor) ExtractInto(ctx context.Context, zipPath, target string) (err error) {
	tmp, err := newTempDir(filepath.Dir(zipPath), x.opts.TempPrefix)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tmp.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zr, err := zip.OpenReader(zipPath)
	// Member names are sanitized below, so insecure paths are fine here.
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return err
	}
	defer zr.Close()

	enc := x.opts.Encoding
	if enc.IsZero() {
		enc = zipenc.Detect(rawNames(zr.File), x.opts.Detect)
		logger.Debug(ctx, "detected name encoding", slog.String("archive", zipPath), slog.String("encoding", enc.Name))
	}

	entries, err := newEntries(zr.File, enc)
	if err != nil {
		return err
	}
	innerRoot := InnerRoot(entries, x.matcher)
	logger.Debug(ctx, "inner root", slog.String("archive", zipPath), slog.String("root", innerRoot))

	root, err := os.OpenRoot(tmp.path)
	if err != nil {
		return err
	}
	defer root.Close()

	st, err := x.unzip(ctx, entries, innerRoot, root)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "extracted",
		slog.String("archive", zipPath),
		slog.Int("files", st.files),
		slog.Int("dirs", st.dirs),
		slog.Int("skipped", st.skipped),
		slog.String("size", humanize.IBytes(st.bytes)),
	)

	x.printf("rename %s -> %s\n", tmp.display(), target)
	return tmp.moveTo(target)
}

type stats struct {
	files, dirs, skipped int
	bytes                uint64
}

func (x *Extractor) unzip(ctx context.Context, entries []Entry, innerRoot string, root *os.Root) (stats, error) {
	var st stats
	for _, e := range entries {
		rel, ok := stripPrefix(e.Path, innerRoot)
		if !ok {
			x.printf("Skip %s\n", e.Path)
			if !x.matcher.IsIgnored(e.Path) {
				return st, fmt.Errorf("%s is outside of %s", e.Path, innerRoot)
			}
			st.skipped++
			continue
		}
		if x.matcher.IsIgnored(e.Path) {
			x.printf("Skip %s\n", e.Path)
			st.skipped++
			continue
		}

		x.printf("%s\n", e.Path)
		name := filepath.FromSlash(rel)
		switch {
		case e.IsDir:
			if err := root.MkdirAll(name, 0o755); err != nil {
				return st, err
			}
			st.dirs++
		case e.Symlink:
			// Links and permission bits are never applied.
			logger.Debug(ctx, "not creating symlink", slog.String("path", e.Path))
			st.skipped++
			continue
		default:
			if err := root.MkdirAll(filepath.FromSlash(path.Dir(rel)), 0o755); err != nil {
				return st, err
			}
			n, err := x.writeFile(ctx, root, name, e.file)
			st.bytes += uint64(n)
			if err != nil {
				return st, fmt.Errorf("%s: %w", e.Path, err)
			}
			st.files++
		}

		if mtime, ok := e.ModTime(); ok {
			if err := root.Chtimes(name, time.Time{}, mtime); err != nil {
				return st, err
			}
		}

		if err := interrupted(ctx); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (x *Extractor) writeFile(ctx context.Context, root *os.Root, name string, f *zip.File) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := root.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := x.copy(ctx, out, rc)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return n, err
}

// copy copies src to dst in fixed-size chunks, checking ctx between them.
func (x *Extractor) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	if x.buf == nil {
		x.buf = make([]byte, copyBufSize)
	}
	var written int64
	for {
		n, rerr := io.ReadFull(src, x.buf)
		if n > 0 {
			if _, err := dst.Write(x.buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
		}
		if err := interrupted(ctx); err != nil {
			return written, err
		}
		switch {
		case rerr == io.EOF || rerr == io.ErrUnexpectedEOF:
			return written, nil
		case rerr != nil:
			return written, rerr
		}
	}
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

func (x *Extractor) printf(format string, args ...any) {
	fmt.Fprintf(x.out, format, args...)
}
