// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package extract

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// SanitizePath turns a decoded member name into a relative slash-separated
// path that cannot escape the extraction directory.
//
// Root, empty and "." components are dropped, ".." removes the previous
// component. It reports false if ".." would climb above the top or a
// component contains a NUL byte. The archive root is "".
func SanitizePath(name string) (string, bool) {
	var parts []string
	for _, c := range strings.Split(name, "/") {
		switch c {
		case "", ".":
		case "..":
			if len(parts) == 0 {
				return "", false
			}
			parts = parts[:len(parts)-1]
		default:
			if strings.IndexByte(c, 0) >= 0 {
				return "", false
			}
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "/"), true
}

// Always skipped: resource forks and thumbnail caches.
var (
	ignoredDirs  = []string{"__MACOSX"}
	ignoredFiles = []string{"Thumbs.db", ".DS_Store"}
)

// Matcher decides which members are not extracted.
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher returns a Matcher that skips the built-in junk entries and
// anything matching one of patterns. A pattern matches either the whole
// sanitized path or its base name; "*" does not cross "/".
func NewMatcher(patterns ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("bad ignore pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// IsIgnored reports whether the sanitized path p is skipped.
func (m *Matcher) IsIgnored(p string) bool {
	if p == "" {
		return false
	}
	for _, c := range strings.Split(p, "/") {
		for _, d := range ignoredDirs {
			if c == d {
				return true
			}
		}
	}
	base := path.Base(p)
	for _, f := range ignoredFiles {
		if base == f {
			return true
		}
	}
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(p) || g.Match(base) {
			return true
		}
	}
	return false
}

// IsIgnored reports whether p is one of the built-in junk entries.
func IsIgnored(p string) bool { return (*Matcher)(nil).IsIgnored(p) }

// hasPrefix reports whether p equals root or lies below it, comparing whole
// components.
func hasPrefix(p, root string) bool {
	if root == "" {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}

// stripPrefix removes root from p. The root itself becomes ".".
func stripPrefix(p, root string) (string, bool) {
	switch {
	case root == "":
		if p == "" {
			return ".", true
		}
		return p, true
	case p == root:
		return ".", true
	case strings.HasPrefix(p, root+"/"):
		return p[len(root)+1:], true
	}
	return "", false
}

// InnerRoot returns the single top-level directory that contains every
// non-ignored member, or "" if there is none. A file's parent directory
// stands for the file.
func InnerRoot(entries []Entry, m *Matcher) string {
	var root string
	found := false
	for _, e := range entries {
		p := e.Path
		if m.IsIgnored(p) {
			continue
		}
		if !e.IsDir {
			p = parent(p)
		}
		if found {
			if !hasPrefix(p, root) {
				return ""
			}
			continue
		}
		if p == "" {
			// A file at the top level.
			return ""
		}
		root, _, _ = strings.Cut(p, "/")
		found = true
	}
	return root
}

func parent(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}
