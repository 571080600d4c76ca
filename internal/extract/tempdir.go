// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// tempDir is a staging directory that is removed by Close unless it was
// moved into place first.
type tempDir struct {
	path  string
	moved bool
}

func newTempDir(parent, prefix string) (*tempDir, error) {
	path, err := os.MkdirTemp(parent, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary directory: %w", err)
	}
	return &tempDir{path: path}, nil
}

// display returns the path relative to the working directory when possible.
func (d *tempDir) display() string {
	wd, err := os.Getwd()
	if err != nil {
		return d.path
	}
	abs, err := filepath.Abs(d.path)
	if err != nil {
		return d.path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return d.path
	}
	return rel
}

// moveTo replaces target with the directory.
func (d *tempDir) moveTo(target string) error {
	// MkdirTemp creates the directory as 0700.
	if err := os.Chmod(d.path, 0o755); err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("removing the old directory: %w", err)
	}
	if err := os.Rename(d.path, target); err != nil {
		return fmt.Errorf("moving the directory: %w", err)
	}
	d.moved = true
	return nil
}

// Close removes the directory if it is still in the staging location.
func (d *tempDir) Close() error {
	if d.moved {
		return nil
	}
	if err := os.RemoveAll(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cleaning the temporary directory: %w", err)
	}
	d.moved = true
	return nil
}
