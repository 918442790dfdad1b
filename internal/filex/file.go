// Package filex has small filesystem helpers for local paths and file URIs.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileScheme = "file://"

// EnsureParentDir makes sure the directory holding path exists. Paths
// without a directory component are left alone.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// TrimFileScheme turns "file:///a/b.jpg" into "/a/b.jpg". Anything else is
// returned unchanged.
func TrimFileScheme(uri string) string {
	return strings.TrimPrefix(uri, fileScheme)
}

// StatRegular returns the size of a regular file, rejecting directories.
func StatRegular(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !fi.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return fi.Size(), nil
}
