// Package dotdir manages the .aura/ and ~/.aura directories that hold the
// configuration file and, by default, the SQLite database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const dirName = ".aura"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target resolves the aura directory, creates it if needed and returns its
// absolute path. The first match wins: overrideDir, an existing ./.aura,
// then ~/.aura.
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.pick(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating aura directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

// File returns the absolute path of name inside the resolved directory.
func (m *Manager) File(overrideDir, name string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (m *Manager) pick(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	if info, err := os.Stat(dirName); err == nil && info.IsDir() {
		return dirName, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
