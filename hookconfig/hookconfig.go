// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package hookconfig reads pre-commit configuration files
// (.pre-commit-config.yaml).
//
// A configuration is an ordered list of repositories, each providing an
// ordered list of hooks. Remote repositories are pinned with rev; the
// special repositories "local" and "meta" are not.
package hookconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// FileName is the conventional configuration file name.
const FileName = ".pre-commit-config.yaml"

// Special repository names.
const (
	LocalRepo = "local"
	MetaRepo  = "meta"
)

// Config is a parsed configuration file.
type Config struct {
	Repos []Repo `yaml:"repos"`

	// Files and Exclude are regular expressions applied before hook filters.
	Files   string `yaml:"files,omitempty"`
	Exclude string `yaml:"exclude,omitempty"`
	// FailFast stops a run at the first failing hook. Otherwise every hook
	// runs and all failures are reported.
	FailFast bool `yaml:"fail_fast,omitempty"`

	DefaultStages           []string          `yaml:"default_stages,omitempty"`
	DefaultLanguageVersion  map[string]string `yaml:"default_language_version,omitempty"`
	MinimumPreCommitVersion string            `yaml:"minimum_pre_commit_version,omitempty"`
	// CI holds pre-commit.ci settings, which are not interpreted.
	CI map[string]any `yaml:"ci,omitempty"`
}

// Repo is one entry of repos.
type Repo struct {
	// Repo is a clonable URL, LocalRepo or MetaRepo.
	Repo string `yaml:"repo"`
	// Rev pins remote repositories.
	Rev   string `yaml:"rev,omitempty"`
	Hooks []Hook `yaml:"hooks"`
}

// IsRemote reports whether r has to be fetched.
func (r Repo) IsRemote() bool { return r.Repo != LocalRepo && r.Repo != MetaRepo }

// Hook is one hook of a repository. For remote repositories most fields
// override the hook's manifest; local hooks define everything here.
type Hook struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Entry    string `yaml:"entry,omitempty"`
	Language string `yaml:"language,omitempty"`

	Files        string   `yaml:"files,omitempty"`
	Exclude      string   `yaml:"exclude,omitempty"`
	Types        []string `yaml:"types,omitempty"`
	TypesOr      []string `yaml:"types_or,omitempty"`
	ExcludeTypes []string `yaml:"exclude_types,omitempty"`

	Args          []string `yaml:"args,omitempty"`
	PassFilenames *bool    `yaml:"pass_filenames,omitempty"`
	AlwaysRun     bool     `yaml:"always_run,omitempty"`
	Stages        []string `yaml:"stages,omitempty"`

	Alias                  string   `yaml:"alias,omitempty"`
	Description            string   `yaml:"description,omitempty"`
	AdditionalDependencies []string `yaml:"additional_dependencies,omitempty"`
	LanguageVersion        string   `yaml:"language_version,omitempty"`
	RequireSerial          bool     `yaml:"require_serial,omitempty"`
	Verbose                bool     `yaml:"verbose,omitempty"`
	LogFile                string   `yaml:"log_file,omitempty"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a configuration and validates it. Unknown keys are errors.
func Parse(b []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	c := new(Config)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty configuration")
		}
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks c against the configuration schema and returns every
// problem found.
func (c *Config) Validate() error {
	var errs []error
	addf := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if len(c.Repos) == 0 {
		addf("repos: at least one repository is required")
	}
	checkRegexp := func(where, key, expr string) {
		if _, err := regexp.Compile(expr); err != nil {
			addf("%s: %s: %v", where, key, err)
		}
	}
	checkRegexp("config", "files", c.Files)
	checkRegexp("config", "exclude", c.Exclude)

	for i, r := range c.Repos {
		where := fmt.Sprintf("repos[%d]", i)
		switch {
		case r.Repo == "":
			addf("%s: repo is required", where)
		case r.IsRemote() && r.Rev == "":
			addf("%s: rev is required for %s", where, r.Repo)
		case !r.IsRemote() && r.Rev != "":
			addf("%s: rev is not allowed for %s", where, r.Repo)
		}
		if len(r.Hooks) == 0 {
			addf("%s: at least one hook is required", where)
		}
		for j, h := range r.Hooks {
			where := fmt.Sprintf("%s.hooks[%d]", where, j)
			if h.ID == "" {
				addf("%s: id is required", where)
			}
			if r.Repo == LocalRepo {
				for _, kv := range [...][2]string{{"name", h.Name}, {"entry", h.Entry}, {"language", h.Language}} {
					if kv[1] == "" {
						addf("%s: %s is required for local hooks", where, kv[0])
					}
				}
			}
			checkRegexp(where, "files", h.Files)
			checkRegexp(where, "exclude", h.Exclude)
		}
	}
	return errors.Join(errs...)
}

// Repo returns the first repository named name.
func (c *Config) Repo(name string) (Repo, bool) {
	for _, r := range c.Repos {
		if r.Repo == name {
			return r, true
		}
	}
	return Repo{}, false
}

// Local returns the hooks of all local repositories in order.
func (c *Config) Local() []Hook {
	var hooks []Hook
	for _, r := range c.Repos {
		if r.Repo == LocalRepo {
			hooks = append(hooks, r.Hooks...)
		}
	}
	return hooks
}

// Hook returns the hook with the given id from repository repo.
func (r Repo) Hook(id string) (Hook, bool) {
	for _, h := range r.Hooks {
		if h.ID == id {
			return h, true
		}
	}
	return Hook{}, false
}

// DisplayName is the name if set, else the id.
func (h Hook) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// PassesFilenames reports whether matching files are appended to the
// command line. It defaults to true.
func (h Hook) PassesFilenames() bool { return h.PassFilenames == nil || *h.PassFilenames }

// Command splits entry using shell quoting rules and appends args.
func (h Hook) Command() ([]string, error) {
	words, err := shellquote.Split(h.Entry)
	if err != nil {
		return nil, fmt.Errorf("hook %s: bad entry %q: %w", h.ID, h.Entry, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("hook %s: empty entry", h.ID)
	}
	return append(words, h.Args...), nil
}

// Matches reports whether the hook applies to the slash-separated path
// whose file type tags are tags. An empty files pattern matches every
// path. Patterns are assumed to be valid, as checked by Validate.
func (h Hook) Matches(path string, tags []string) bool {
	if h.Files != "" && !regexp.MustCompile(h.Files).MatchString(path) {
		return false
	}
	if h.Exclude != "" && regexp.MustCompile(h.Exclude).MatchString(path) {
		return false
	}
	for _, t := range h.Types {
		if !slices.Contains(tags, t) {
			return false
		}
	}
	if len(h.TypesOr) > 0 && !slices.ContainsFunc(h.TypesOr, func(t string) bool { return slices.Contains(tags, t) }) {
		return false
	}
	for _, t := range h.ExcludeTypes {
		if slices.Contains(tags, t) {
			return false
		}
	}
	return true
}

// Filter returns the paths matched by the top-level files and exclude
// patterns.
func (c *Config) Filter(paths []string) []string {
	var out []string
	for _, p := range paths {
		if c.Files != "" && !regexp.MustCompile(c.Files).MatchString(p) {
			continue
		}
		if c.Exclude != "" && regexp.MustCompile(c.Exclude).MatchString(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
