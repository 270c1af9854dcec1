// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the Anthropic API key from a directory of plain-text
// files. The filename is the key name and the file contents (trimmed) are the
// value. Used as a fallback when ANTHROPIC_API_KEY is not set in the
// environment.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// anthropicKeyFile is the filename holding the Messages API key.
const anthropicKeyFile = "anthropic-api-key"

// APIKey reads dir/anthropic-api-key and returns its trimmed contents.
// A missing directory or file is not an error; APIKey returns "".
func APIKey(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, anthropicKeyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading secret %s: %w", anthropicKeyFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}
