// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Exzip extracts ZIP archives into directories named after them.

Usage:

	$ exzip [-O encoding] [-y | -n] archive.zip...

Each archive is extracted next to itself: photos.zip becomes photos/. If
every member lives under one top-level directory, that directory is
dropped, so an archive containing photos/a.jpg still yields photos/a.jpg.

Member names without the UTF-8 flag are decoded with an encoding detected
from the names themselves: UTF-8 first, then Shift_JIS, falling back to
CP437. Use -O to name the encoding explicitly (cp437, cp932, euc-kr, gbk,
and any other WHATWG encoding label).

Archives are unpacked into a temporary directory that replaces the target
only after extraction succeeded. If the target exists, exzip asks before
replacing it; -y replaces without asking and -n never replaces.

__MACOSX directories, .DS_Store and Thumbs.db files are skipped. Symbolic
links and permission bits stored in archives are not applied.

Defaults can be set in a TOML file at $EXZIP_CONFIG or
$XDG_CONFIG_HOME/exzip/config.toml:

	encoding = "cp932"                # like -O
	candidates = ["utf-8", "euc-kr"]  # encodings tried during detection
	guess = true                      # guess the charset as a last resort
	ignore = ["*.tmp", "desktop.ini"] # extra members to skip
	replace = "ask"                   # ask, always or never
	temp_prefix = "exzip-"

Exzip exits with status 1 on errors and 130 when interrupted.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/exzip/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
