// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Addcopyright adds a copyright header to Go files.

It takes the files to process as arguments, as passed by the pre-commit hook,
or processes every tracked file of the repository when there are none. A file
that does not start with a header gets one, using the year of its last
modification, and the command fails so the change can be reviewed.

With -check files are only reported.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/exzip/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
