package cli

// This file contains the list command for displaying previous sessions.

import (
	"fmt"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rigrun/rigrun/history"
	"github.com/rigrun/rigrun/model"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	root, err := history.Root()
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		fmt.Println("No sessions found")
		fmt.Printf("Sessions are saved to %s/history/<timestamp>-<commit>-<id>/\n", root)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.Timestamp.After(entries[j].Record.Timestamp)
	})

	displayed := entries
	if limit > 0 && limit < len(displayed) {
		displayed = displayed[:limit]
	}

	fmt.Printf("\n=== Sessions (%d total) ===\n\n", len(entries))

	for _, entry := range displayed {
		rec := entry.Record
		timestamp := rec.Timestamp.Format("2006-01-02 15:04:05")
		duration := rec.Duration.Round(time.Millisecond)

		status := "✓"
		if rec.ExitCode != 0 {
			status = "✗"
		}

		shortID := rec.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Printf("%s  %s  [%s]  exit=%d  id=%s\n", status, timestamp, duration, rec.ExitCode, shortID)
		if rec.Remote != nil {
			fmt.Printf("   Rig: %s (%s)\n", rec.Remote.Rig, rec.Remote.Outcome)
		} else {
			passed, failed := 0, 0
			for _, r := range rec.Results {
				if r.Outcome == model.OutcomePass {
					passed++
				} else {
					failed++
				}
			}
			fmt.Printf("   Runs: %d passed, %d failed\n", passed, failed)
		}
		if rec.Commit != "" {
			shortCommit := rec.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Printf("   Commit: %s", shortCommit)
			if rec.Branch != "" {
				fmt.Printf(" (%s)", rec.Branch)
			}
			fmt.Println()
		}
		fmt.Printf("   %s\n", entry.FullPath)
		fmt.Println()
	}

	fmt.Println("View session output: cat <path>/output.txt")

	return nil
}
