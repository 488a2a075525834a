package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Prefs are small settings remembered across runs.
type Prefs struct {
	PassedOnboarding bool `yaml:"passed_onboarding"`
}

// LoadPrefs reads prefs from path. A missing file yields zero prefs.
func LoadPrefs(path string) (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse prefs: %w", err)
	}
	return p, nil
}

func SavePrefs(path string, p Prefs) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
