// Package storage persists acquisition results and persona narratives with
// deterministic, subject-keyed file names. Writes overwrite: last write
// wins, there is no versioning.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/personagraph/internal/models"
)

// SaveRaw writes the full acquisition result as pretty-printed JSON to
// {outputDir}/{username}_raw_data.json, creating the directory if needed.
// The serialization is lossless: LoadRaw reconstructs an equal result.
func SaveRaw(result *models.AcquisitionResult, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outputDir, result.Username+"_raw_data.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// LoadRaw reads a previously saved acquisition result.
func LoadRaw(path string) (*models.AcquisitionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var result models.AcquisitionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return &result, nil
}

// RawPath returns the deterministic raw-data path for a subject.
func RawPath(username, outputDir string) string {
	return filepath.Join(outputDir, username+"_raw_data.json")
}

// SaveNarrative writes the persona text to
// {outputDir}/{username}_persona.txt.
func SaveNarrative(text, username, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outputDir, username+"_persona.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// LoadNarrative finds a previously saved narrative for the subject, trying
// the known filename patterns in order. Returns os.ErrNotExist (wrapped)
// when none exists.
func LoadNarrative(username, outputDir string) (string, error) {
	candidates := []string{
		username + "_persona.txt",
		username + ".txt",
		username + "_persona.md",
		username + ".md",
	}
	for _, name := range candidates {
		data, err := os.ReadFile(filepath.Join(outputDir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
	}
	return "", fmt.Errorf("no saved narrative for %s in %s: %w", username, outputDir, os.ErrNotExist)
}
