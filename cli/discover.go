package cli

// This file contains test discovery. The test set is fixed at session start
// and never mutated mid-session.

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rigrun/rigrun/config"
)

// discoverTests scans the configured tests directory for test programs.
// The identifier of each test is its file name without the extension;
// results are sorted so discovery order is deterministic.
func discoverTests(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.TestsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tests directory %s: %w", cfg.TestsDir, err)
	}

	var tests []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, cfg.TestExt) {
			continue
		}
		tests = append(tests, strings.TrimSuffix(name, cfg.TestExt))
	}

	sort.Strings(tests)
	return tests, nil
}
