// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files or
// from a dotenv file.
//
// In a secrets directory each file is one secret: the filename is the key name
// and the trimmed file contents are the value (e.g. .secrets/openai-api-key).
// A dotenv file holds KEY=value lines (e.g. OPENAI_API_KEY=sk-...).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotenv parses the dotenv file at path without touching the process
// environment. Values are trimmed and blank values dropped. A missing file
// returns an error satisfying os.IsNotExist.
func LoadDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}

	secrets := make(map[string]string, len(values))
	for k, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			secrets[k] = v
		}
	}
	return secrets, nil
}
