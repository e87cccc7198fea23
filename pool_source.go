package mapcycle

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
)

// PoolSource provides the map list. It is read on every level load.
type PoolSource interface {
	Entries(ctx context.Context) ([]PoolEntry, error)
}

// StaticPoolSource is a fixed map list.
type StaticPoolSource []PoolEntry

// Entries returns a copy of the list.
func (s StaticPoolSource) Entries(_ context.Context) ([]PoolEntry, error) {
	return slices.Clone(s), nil
}

// StaticPool builds a source from bare filenames.
func StaticPool(filenames ...string) StaticPoolSource {
	var entries = make(StaticPoolSource, len(filenames))
	for i, filename := range filenames {
		entries[i] = PoolEntry{Filename: filename}
	}
	return entries
}

// FilePoolSource reads the map list from a JSON file. When the JSON file does
// not exist it is generated from a plain map cycle file, one filename per
// line, blank lines and // comments skipped.
type FilePoolSource struct {
	JSONPath string
	TextPath string
}

// Entries loads the JSON file, generating it first if needed.
func (s FilePoolSource) Entries(_ context.Context) ([]PoolEntry, error) {
	entries, err := readPoolJSON(s.JSONPath)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || s.TextPath == "" {
		return nil, err
	}

	if err := buildPoolJSON(s.TextPath, s.JSONPath); err != nil {
		return nil, err
	}

	return readPoolJSON(s.JSONPath)
}

func readPoolJSON(path string) ([]PoolEntry, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map list: %w", err)
	}

	var entries []PoolEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse map list %s: %w", path, err)
	}

	return entries, nil
}

func buildPoolJSON(textPath, jsonPath string) error {
	var file, err = os.Open(textPath)
	if err != nil {
		return fmt.Errorf("failed to open map cycle file: %w", err)
	}
	defer file.Close()

	var (
		entries = make([]PoolEntry, 0)
		scanner = bufio.NewScanner(file)
	)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		entries = append(entries, PoolEntry{Filename: line})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read map cycle file: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode map list: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write map list: %w", err)
	}

	return nil
}
