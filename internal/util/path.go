package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotDirectory = errors.New("path is not a directory")

// ResolveDir resolves input against base and checks that it names an
// existing directory. It returns the absolute path.
func ResolveDir(base, input string) (string, error) {
	path := input
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", abs)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}
	return abs, nil
}
