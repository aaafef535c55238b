// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings persists the small preference record kept between runs:
// the last folder the user worked in.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const (
	fileName = "settings.yaml"
	appDir   = "deck-merger"
)

// Settings is the persisted preference record.
type Settings struct {
	// LastFolder is the folder chosen most recently.
	LastFolder string `yaml:"last_folder"`
}

// DefaultStateDir returns $XDG_STATE_HOME/deck-merger or
// ~/.local/state/deck-merger.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDir)
	}
	return filepath.Join(home, ".local", "state", appDir)
}

// Path returns the settings file location inside stateDir.
func Path(stateDir string) string {
	return filepath.Join(stateDir, fileName)
}

// Load reads the settings file. A missing, unreadable or corrupt file yields
// the zero Settings, as does a LastFolder that is no longer a directory.
func Load(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}
	}
	if s.LastFolder != "" {
		if info, err := os.Stat(s.LastFolder); err != nil || !info.IsDir() {
			s.LastFolder = ""
		}
	}
	return s
}

// Save writes s to path through a temporary file so a crash never leaves a
// truncated record.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing settings: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// RememberFolder records folder as the last used one when it differs from
// what is stored. It reports whether the file was written.
func RememberFolder(path, folder string) (bool, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return false, fmt.Errorf("resolving folder %s: %w", folder, err)
	}
	cur := Load(path)
	if cur.LastFolder == abs {
		return false, nil
	}
	cur.LastFolder = abs
	if err := Save(path, cur); err != nil {
		return false, err
	}
	return true, nil
}
