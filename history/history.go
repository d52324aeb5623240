// Package history loads recorded rigrun sessions from the .rigrun
// directory.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rigrun/rigrun/model"
)

type Entry struct {
	Record   model.SessionRecord
	FullPath string
}

// Root returns the .rigrun directory path. It lives at the git repository
// root when the working directory is inside one, otherwise in the working
// directory itself.
func Root() (string, error) {
	base, err := repoRoot()
	if err != nil {
		base, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(base, ".rigrun"), nil
}

func repoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// LoadEntries loads all session records below root.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			recordPath := filepath.Join(path, "session.json")
			if _, err := os.Stat(recordPath); err == nil {
				record, err := parseSessionJSON(recordPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", recordPath).Msg("Failed to parse session.json")
					return nil
				}

				entries = append(entries, Entry{
					Record:   record,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk .rigrun directory: %w", err)
	}

	return entries, nil
}

func parseSessionJSON(path string) (model.SessionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SessionRecord{}, err
	}

	var record model.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SessionRecord{}, err
	}

	return record, nil
}
