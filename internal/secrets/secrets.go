// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: semantic-scholar-api-key, crossref-token, contact-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/citecheck/pkg/types"
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
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills empty credential fields in cfg from the loaded secrets.
// Values already present in the config (from the config file or flags) win,
// so a key file is a fallback rather than an override. The contact email
// feeds every source with a polite-pool policy.
func Apply(cfg *types.Config, secrets map[string]string) {
	if v := secrets["semantic-scholar-api-key"]; v != "" && cfg.Sources.SemanticScholar.APIKey == "" {
		cfg.Sources.SemanticScholar.APIKey = v
	}
	if v := secrets["crossref-token"]; v != "" && cfg.Sources.Crossref.APIKey == "" {
		cfg.Sources.Crossref.APIKey = v
	}
	if v := secrets["contact-email"]; v != "" {
		if cfg.Sources.Crossref.Mailto == "" {
			cfg.Sources.Crossref.Mailto = v
		}
		if cfg.Sources.OpenAlex.Mailto == "" {
			cfg.Sources.OpenAlex.Mailto = v
		}
	}
}
