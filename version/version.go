// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package version reports build information embedded into binaries.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Info describes the running binary.
type Info struct {
	Name      string
	Module    string
	Version   string
	Commit    string
	Dirty     bool
	BuildTime time.Time
	Go        string
	OS        string
	Arch      string
}

// String formats the info for printing by the -version flag.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", i.Name, i.Version)
	if i.Commit != "" {
		commit := i.Commit
		if i.Dirty {
			commit += " (dirty)"
		}
		fmt.Fprintf(&sb, "commit: %s\n", commit)
	}
	if !i.BuildTime.IsZero() {
		fmt.Fprintf(&sb, "built: %s\n", i.BuildTime.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "go: %s %s/%s\n", i.Go, i.OS, i.Arch)
	return sb.String()
}

// Version returns information about the current binary.
func Version() Info {
	info := Info{
		Name:    CmdName(),
		Version: "devel",
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Module = bi.Main.Path
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			info.BuildTime, _ = time.Parse(time.RFC3339, s.Value)
		}
	}
	return info
}

// CmdName returns the base name of the current binary.
func CmdName() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Path != "" {
		return filepath.Base(bi.Path)
	}
	exe, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}
	return strings.TrimSuffix(filepath.Base(exe), ".exe")
}
