package cli

// This file contains session recording functionality for saving session
// metadata and captured device output to the history directory.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rigrun/rigrun/history"
	"github.com/rigrun/rigrun/model"
)

func (a *App) recordSession(record *model.SessionRecord, output string) error {
	root, err := history.Root()
	if err != nil {
		return err
	}

	// Normalize the working directory relative to the history root's parent.
	if record.WorkDir != "" {
		if rel, err := filepath.Rel(filepath.Dir(root), record.WorkDir); err == nil {
			record.WorkDir = rel
		}
	}
	record.Repo = filepath.Base(filepath.Dir(root))

	// Create directory .rigrun/history/<timestamp>-<commit>-<id>
	timestamp := record.Timestamp.Format("20060102-150405")
	shortCommit := record.Commit
	if len(shortCommit) > 8 {
		shortCommit = shortCommit[:8]
	}
	shortID := record.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	sessionName := fmt.Sprintf("%s-%s-%s", timestamp, shortCommit, shortID)
	sessionDir := filepath.Join(root, "history", sessionName)

	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Write captured output if present
	if output != "" {
		outputPath := filepath.Join(sessionDir, "output.txt")
		if err := os.WriteFile(outputPath, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		artifactType := model.ArtifactTypeOutput
		if record.Remote != nil {
			artifactType = model.ArtifactTypeRemoteOutput
		}
		record.Artifacts = append(record.Artifacts, model.Artifact{
			Type: artifactType,
			Size: uint64(len(output)),
			File: "output.txt",
		})
	}

	// Write session metadata
	metadataPath := filepath.Join(sessionDir, "session.json")
	metadataJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := os.WriteFile(metadataPath, metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write session metadata: %w", err)
	}

	a.logger.Debug().Str("dir", sessionDir).Str("id", record.ID).Msg("Recorded session")
	return nil
}
