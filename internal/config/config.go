// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config loads the optional exzip configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvVar names the environment variable that overrides the config path.
const EnvVar = "EXZIP_CONFIG"

// Config holds user defaults. Command-line flags take precedence.
type Config struct {
	// Encoding forces the name encoding, like -O.
	Encoding string `toml:"encoding"`
	// Candidates replaces the encodings tried during detection.
	Candidates []string `toml:"candidates"`
	// Guess enables statistical charset detection as a last resort.
	Guess bool `toml:"guess"`
	// Ignore lists glob patterns of members to skip.
	Ignore []string `toml:"ignore"`
	// Replace is "ask", "always" or "never".
	Replace string `toml:"replace"`
	// TempPrefix prefixes staging directories.
	TempPrefix string `toml:"temp_prefix"`
}

// Path returns the config file location: $EXZIP_CONFIG if set, otherwise
// exzip/config.toml in the user config directory.
func Path(getenv func(string) string) (string, error) {
	if p := getenv(EnvVar); p != "" {
		return p, nil
	}
	dir := getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "exzip", "config.toml"), nil
}

// Load reads the config at path. A missing file yields an empty Config
// unless mustExist is set.
func Load(path string, mustExist bool) (*Config, error) {
	c := new(Config)
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) && !mustExist {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("loading config %s: unknown key %q", path, undecoded[0].String())
	}
	return c, nil
}
