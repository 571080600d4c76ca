// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.astrophena.name/exzip/cli"
	"go.astrophena.name/exzip/devtools/internal"
	"go.astrophena.name/exzip/logger"
)

var templates = map[string]string{
	".go": `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`,
}

var headers = map[string]string{
	".go": `// ©`,
}

var errMissing = errors.New("missing copyright header")

func main() { cli.Main(new(app)) }

type app struct {
	check bool
}

func (a *app) Flags(f *flag.FlagSet) {
	f.BoolVar(&a.check, "check", false, "Report files without a header instead of fixing them.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	files := env.Args
	if len(files) == 0 {
		repo, err := internal.EnsureRoot()
		if err != nil {
			return err
		}
		if files, err = repo.TrackedFiles(); err != nil {
			return err
		}
	}

	var missing []string
	for _, path := range files {
		added, err := a.process(path)
		if err != nil {
			return err
		}
		if added {
			logger.Debug(ctx, "missing copyright header", slog.String("path", path))
			missing = append(missing, path)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if a.check {
		return fmt.Errorf("%w: %s", errMissing, strings.Join(missing, ", "))
	}
	// Fail like other fixers so the changes are reviewed before committing.
	return fmt.Errorf("%w: added to %s", errMissing, strings.Join(missing, ", "))
}

// process reports whether path lacked a header, adding one unless checking.
func (a *app) process(path string) (bool, error) {
	ext := filepath.Ext(path)
	tmpl, ok := templates[ext]
	if !ok {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if bytes.HasPrefix(content, []byte(headers[ext])) {
		return false, nil
	}
	if a.check {
		return true, nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, tmpl, info.ModTime().Year())
	buf.Write(content)
	return true, os.WriteFile(path, buf.Bytes(), info.Mode().Perm())
}
