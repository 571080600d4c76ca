// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package testutil provides helpers for common testing scenarios.
package testutil

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/tools/txtar"
)

// AssertEqual fails the test if got is not deeply equal to want.
// It prints both values for easy comparison upon failure.
func AssertEqual(t *testing.T, got, want any) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("values are not equal:\ngot:  %#v\nwant: %#v", got, want)
	}
}

// Run runs a subtest for each file that matches the provided glob pattern.
// The subtest name is the file's base name without extension.
func Run(t *testing.T, glob string, f func(t *testing.T, match string)) {
	t.Helper()
	matches, err := filepath.Glob(glob)
	if err != nil {
		t.Fatalf("filepath.Glob(%q): %v", glob, err)
	}
	if len(matches) == 0 {
		t.Fatalf("no files match %q", glob)
	}

	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), filepath.Ext(match))
		t.Run(name, func(t *testing.T) {
			f(t, match)
		})
	}
}

// RunGolden runs a test for each file matching a glob pattern and compares
// the result of a function f with the contents of a corresponding ".golden"
// file.
//
// If update is true, the golden file is updated with the new result instead
// of being compared.
func RunGolden(t *testing.T, glob string, f func(t *testing.T, match string) []byte, update bool) {
	t.Helper()
	Run(t, glob, func(t *testing.T, match string) {
		got := f(t, match)
		goldenFile := strings.TrimSuffix(match, filepath.Ext(match)) + ".golden"

		if update {
			if err := os.WriteFile(goldenFile, got, 0o644); err != nil {
				t.Fatalf("failed to write golden file %q: %v", goldenFile, err)
			}
			return
		}

		want, err := os.ReadFile(goldenFile)
		if err != nil {
			t.Fatalf("failed to read golden file %q: %v", goldenFile, err)
		}

		if !bytes.Equal(got, want) {
			t.Fatalf("golden file mismatch. got:\n%s\nwant:\n%s", got, want)
		}
	})
}

// BuildTxtar renders the tree under dir as a txtar archive. Directories are
// listed as empty files whose names end with a slash, so empty directories
// show up too.
func BuildTxtar(t *testing.T, dir string) []byte {
	t.Helper()
	ar := new(txtar.Archive)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			ar.Files = append(ar.Files, txtar.File{Name: rel + "/"})
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ar.Files = append(ar.Files, txtar.File{Name: rel, Data: data})
		return nil
	})
	if err != nil {
		t.Fatalf("failed to build txtar from dir %q: %v", dir, err)
	}
	return txtar.Format(ar)
}

// ExtractTxtar writes the files of a txtar archive into dir.
func ExtractTxtar(t *testing.T, ar *txtar.Archive, dir string) {
	t.Helper()
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("failed to extract txtar to dir %q: %v", dir, err)
		}
	}
}

// ZipEntry describes one member of a ZIP archive built by [WriteZip].
type ZipEntry struct {
	// Name is written as raw bytes. A trailing slash makes a directory.
	Name string
	Data []byte
	// NonUTF8 leaves the UTF-8 flag unset even for valid UTF-8 names.
	NonUTF8 bool
	// Modified is stored with an extended timestamp when set.
	Modified time.Time
	// DOSDate and DOSTime are stored verbatim when Modified is zero.
	DOSDate, DOSTime uint16
	// Symlink makes the entry a symbolic link pointing to Data.
	Symlink bool
}

// ZipEntries converts a txtar archive into ZIP entries.
func ZipEntries(ar *txtar.Archive) []ZipEntry {
	entries := make([]ZipEntry, 0, len(ar.Files))
	for _, f := range ar.Files {
		entries = append(entries, ZipEntry{Name: f.Name, Data: f.Data})
	}
	return entries
}

// WriteZip creates a ZIP archive at path containing entries in order.
func WriteZip(t *testing.T, path string, entries ...ZipEntry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		fh := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			NonUTF8:  e.NonUTF8,
			Modified: e.Modified,
		}
		if e.Modified.IsZero() {
			//lint:ignore SA1019 legacy fields are the only way to store a raw DOS time.
			fh.ModifiedDate, fh.ModifiedTime = e.DOSDate, e.DOSTime
		}
		switch {
		case strings.HasSuffix(e.Name, "/"):
			fh.Method = zip.Store
			fh.SetMode(fs.ModeDir | 0o755)
		case e.Symlink:
			fh.SetMode(fs.ModeSymlink | 0o777)
		default:
			fh.SetMode(0o644)
		}
		w, err := zw.CreateHeader(fh)
		if err != nil {
			t.Fatalf("adding %q to %s: %v", e.Name, path, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}
