// Package prefs persists per-project front-end preferences, keyed by
// project directory. The session engine itself never reads these; only the
// TUI shell does, so a missing or broken prefs file costs nothing but the
// defaults.
package prefs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Prefs holds the remembered layout choices for one project.
type Prefs struct {
	AttachmentsVisible bool `json:"attachments_visible"`
}

// Defaults returns the preferences used before a project has saved any.
func Defaults() Prefs {
	return Prefs{}
}

// Key derives a stable, filesystem-safe identifier for a project directory:
// the directory basename plus a short hash of the full path, so distinct
// projects with the same basename do not collide.
func Key(projectDir string) string {
	base := filepath.Base(filepath.Clean(projectDir))
	sum := sha256.Sum256([]byte(projectDir))
	return base + "-" + hex.EncodeToString(sum[:])[:8]
}

// prefsPath returns the prefs file for a project.
func prefsPath(projectDir string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "parley", "prefs", Key(projectDir)+".json"), nil
}

// Load reads the project's preferences, returning defaults when absent.
func Load(projectDir string) (Prefs, error) {
	path, err := prefsPath(projectDir)
	if err != nil {
		return Defaults(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Defaults(), err
	}
	return p, nil
}

// Save writes the project's preferences, creating the prefs directory if
// needed.
func Save(projectDir string, p Prefs) error {
	path, err := prefsPath(projectDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
