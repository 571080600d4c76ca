// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Pre-commit installs and runs a Git pre-commit hook.

On its first run in a non-CI environment, it automatically creates the
.git/hooks/pre-commit script. This script simply calls 'go tool pre-commit'
again, ensuring that the checks are run on every subsequent commit.

Hooks are read from the .pre-commit-config.yaml file in the repository root,
the format used by the pre-commit framework. Only hooks of local repositories
with language "system" are run; remote and meta repositories are skipped.

By default hooks see the files staged for commit. With -all-files they see
every tracked file instead. A file is passed to a hook when it matches the
hook's files, exclude and types settings; type tags are "file", "text" or
"binary" and the lower-cased language name, such as "go" or "yaml".

A failing hook does not stop the run: every hook runs and all failures are
reported together, unless the configuration sets fail_fast.

Usage:

	$ go tool pre-commit [-all-files] [hook id...]

Hook ids limit the run to the named hooks.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/exzip/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
