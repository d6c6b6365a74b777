package fsutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveJSON writes v as indented JSON to path, replacing the file atomically.
// label names the data in error messages.
func SaveJSON(v any, path, label string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", label, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to save %s to %s: %w", label, path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to save %s to %s: %w", label, path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save %s to %s: %w", label, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save %s to %s: %w", label, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s to %s: %w", label, path, err)
	}

	return nil
}

// LoadJSON decodes the JSON file at path into v.
func LoadJSON(path, label string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load %s from %s: %w", label, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s from %s: %w", label, path, err)
	}
	return nil
}
