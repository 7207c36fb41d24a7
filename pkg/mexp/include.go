package mexp

import (
	"fmt"
	"os"
	"path/filepath"
)

// includeReader reads include paths. Absolute paths are read directly;
// relative ones are tried as given and then against each directory in order.
func includeReader(dirs []string) FileReader {
	return func(path string) (string, error) {
		resolved, err := resolveInclude(path, dirs)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func resolveInclude(path string, dirs []string) (string, error) {
	if filepath.IsAbs(path) || fileExists(path) {
		return filepath.Clean(path), nil
	}
	for _, dir := range dirs {
		cand := filepath.Join(dir, path)
		if fileExists(cand) {
			return filepath.Clean(cand), nil
		}
	}
	return "", fmt.Errorf("cannot resolve include %q: %w", path, os.ErrNotExist)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
