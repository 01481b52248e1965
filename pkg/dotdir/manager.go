// Package dotdir resolves the .scribe/ directory that holds config.toml and
// the default SQLite timer database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the scribe directory.
	DirName = ".scribe"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .scribe/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.scribe/ dir
//  3. Home ~/.scribe/ dir, if it exists
//
// An empty string with a nil error means no directory was found.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating scribe directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, DirName)) {
		return filepath.Join(cwd, DirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if isDir(filepath.Join(home, DirName)) {
		return filepath.Join(home, DirName), nil
	}

	return "", nil
}

// Init creates ./.scribe/ under dir and returns its path along with whether it
// already existed.
func (m *Manager) Init(dir string) (string, bool, error) {
	target := filepath.Join(dir, DirName)
	if isDir(target) {
		return target, true, nil
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", false, fmt.Errorf("creating %s directory: %w", DirName, err)
	}
	return target, false, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
