// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package hookconfig

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"go.astrophena.name/exzip/testutil"
)

func TestRustConfig(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "rust.pre-commit-config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, len(c.Repos), 3)

	local, ok := c.Repo(LocalRepo)
	if !ok {
		t.Fatal("no local repo")
	}
	var ids []string
	for _, h := range local.Hooks {
		ids = append(ids, h.ID)
	}
	testutil.AssertEqual(t, ids, []string{"fmt", "cargo-check", "clippy"})

	clippy, ok := local.Hook("clippy")
	if !ok {
		t.Fatal("no clippy hook")
	}
	testutil.AssertEqual(t, clippy.Args, []string{"--", "-D", "warnings"})
	testutil.AssertEqual(t, clippy.PassesFilenames(), false)

	cmd, err := clippy.Command()
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, cmd, []string{"cargo", "clippy", "--", "-D", "warnings"})
	testutil.AssertEqual(t, len(c.Local()), 3)
}

// The repository's own configuration must stay loadable.
func TestOwnConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", FileName))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Local()) == 0 {
		t.Fatal("no local hooks")
	}
}

func TestFailFast(t *testing.T) {
	const base = "repos:\n  - repo: meta\n    hooks:\n      - id: check-hooks-apply\n"
	c, err := Parse([]byte(base))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, c.FailFast, false)

	c, err = Parse([]byte("fail_fast: true\n" + base))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, c.FailFast, true)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		in      string
		wantErr []string
	}{
		"empty": {
			in:      "",
			wantErr: []string{"empty configuration"},
		},
		"no repos": {
			in:      "repos: []\n",
			wantErr: []string{"repos: at least one repository is required"},
		},
		"unknown key": {
			in:      "repos:\n  - repo: local\n    hooks:\n      - id: x\n        name: x\n        entry: x\n        language: system\n        colour: red\n",
			wantErr: []string{"field colour not found"},
		},
		"remote without rev": {
			in:      "repos:\n  - repo: https://example.com/hooks\n    hooks:\n      - id: x\n",
			wantErr: []string{"repos[0]: rev is required for https://example.com/hooks"},
		},
		"local with rev": {
			in:      "repos:\n  - repo: local\n    rev: v1\n    hooks:\n      - id: x\n        name: x\n        entry: x\n        language: system\n",
			wantErr: []string{"repos[0]: rev is not allowed for local"},
		},
		"incomplete local hook": {
			in: "repos:\n  - repo: local\n    hooks:\n      - id: x\n        language: system\n",
			wantErr: []string{
				"repos[0].hooks[0]: name is required for local hooks",
				"repos[0].hooks[0]: entry is required for local hooks",
			},
		},
		"no hooks and no id": {
			in: "repos:\n  - repo: meta\n    hooks: []\n  - repo: meta\n    hooks:\n      - name: nameless\n",
			wantErr: []string{
				"repos[0]: at least one hook is required",
				"repos[1].hooks[0]: id is required",
			},
		},
		"bad regexp": {
			in:      "exclude: '(['\nrepos:\n  - repo: meta\n    hooks:\n      - id: check-useless-excludes\n        files: '*.go'\n",
			wantErr: []string{"config: exclude:", "repos[0].hooks[0]: files:"},
		},
		"not yaml": {
			in:      "repos: [\n",
			wantErr: []string{"yaml:"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.in))
			if err == nil {
				t.Fatal("want error, got nil")
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err, want)
				}
			}
		})
	}
}

func TestCommand(t *testing.T) {
	cases := map[string]struct {
		hook    Hook
		want    []string
		wantErr bool
	}{
		"plain": {
			hook: Hook{ID: "vet", Entry: "go vet ./..."},
			want: []string{"go", "vet", "./..."},
		},
		"quoted with args": {
			hook: Hook{ID: "echo", Entry: `sh -c 'echo "$@"' --`, Args: []string{"a b"}},
			want: []string{"sh", "-c", `echo "$@"`, "--", "a b"},
		},
		"unterminated quote": {
			hook:    Hook{ID: "bad", Entry: `echo "oops`},
			wantErr: true,
		},
		"empty": {
			hook:    Hook{ID: "empty", Entry: "  "},
			wantErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := tc.hook.Command()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestPassesFilenames(t *testing.T) {
	no := false
	testutil.AssertEqual(t, Hook{}.PassesFilenames(), true)
	testutil.AssertEqual(t, Hook{PassFilenames: &no}.PassesFilenames(), false)
}

func TestMatches(t *testing.T) {
	cases := map[string]struct {
		hook Hook
		path string
		tags []string
		want bool
	}{
		"no filters": {
			hook: Hook{},
			path: "README.md",
			tags: []string{"file", "text"},
			want: true,
		},
		"type present": {
			hook: Hook{Types: []string{"rust"}},
			path: "src/main.rs",
			tags: []string{"file", "text", "rust"},
			want: true,
		},
		"type missing": {
			hook: Hook{Types: []string{"rust"}},
			path: "main.go",
			tags: []string{"file", "text", "go"},
		},
		"all types required": {
			hook: Hook{Types: []string{"text", "go"}},
			path: "logo.png",
			tags: []string{"file", "binary"},
		},
		"types_or": {
			hook: Hook{TypesOr: []string{"toml", "yaml"}},
			path: "Cargo.toml",
			tags: []string{"file", "text", "toml"},
			want: true,
		},
		"exclude_types": {
			hook: Hook{ExcludeTypes: []string{"binary"}},
			path: "logo.png",
			tags: []string{"file", "binary"},
		},
		"files": {
			hook: Hook{Files: `^src/`},
			path: "docs/index.md",
			tags: []string{"file", "text"},
		},
		"exclude": {
			hook: Hook{Exclude: `testdata/`},
			path: "hookconfig/testdata/rust.pre-commit-config.yaml",
			tags: []string{"file", "text", "yaml"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, tc.hook.Matches(tc.path, tc.tags), tc.want)
		})
	}
}

func TestFilter(t *testing.T) {
	c := &Config{Exclude: `^_examples/`}
	got := c.Filter([]string{"main.go", "_examples/x/main.go", "go.mod"})
	testutil.AssertEqual(t, got, []string{"main.go", "go.mod"})
}

func TestDisplayName(t *testing.T) {
	testutil.AssertEqual(t, Hook{ID: "cargo-check", Name: "cargo check"}.DisplayName(), "cargo check")
	testutil.AssertEqual(t, Hook{ID: "typos"}.DisplayName(), "typos")
}
