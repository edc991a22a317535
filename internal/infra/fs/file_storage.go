package fs

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// GoalieSummaryFile holds the last raw stats API response under the data dir.
const GoalieSummaryFile = "goalie_summary.json"

// SaveJSON writes v as indented JSON to dir/filename, creating dir.
func SaveJSON(fs afero.Fs, dir, filename string, v interface{}) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filename, err)
	}

	fullPath := filepath.Join(dir, filename)
	tmp := fullPath + ".tmp"
	if err := afero.WriteFile(fs, tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	if err := fs.Rename(tmp, fullPath); err != nil {
		fs.Remove(tmp)
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}

// LoadJSON reads dir/filename into v.
func LoadJSON(fs afero.Fs, dir, filename string, v interface{}) error {
	data, err := afero.ReadFile(fs, filepath.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}
