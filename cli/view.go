package cli

// This file contains the view command for displaying one recorded session.

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/rigrun/rigrun/history"
	"github.com/rigrun/rigrun/report"
)

func (a *App) view(ctx *cli.Context) error {
	arg := "0"
	if ctx.Args().Len() > 0 {
		arg = ctx.Args().First()
	}

	root, err := history.Root()
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no sessions found")
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.Timestamp.After(entries[j].Record.Timestamp)
	})

	target, err := pickEntry(entries, arg)
	if err != nil {
		return err
	}

	return a.displayEntry(target)
}

// pickEntry resolves arg against sorted entries: 0 is the last session, -1
// the second-to-last, and anything else a hex ID prefix.
func pickEntry(entries []history.Entry, arg string) (*history.Entry, error) {
	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			return nil, fmt.Errorf("invalid index: %s (use 0 for last, -1 for second-to-last, etc.)", arg)
		}
		index := int(-parsed)
		if index >= len(entries) {
			return nil, fmt.Errorf("index %s out of range (only %d sessions)", arg, len(entries))
		}
		return &entries[index], nil
	}

	hexID := strings.ToLower(arg)
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].Record.ID), hexID) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no session found matching ID: %s", arg)
}

func (a *App) displayEntry(entry *history.Entry) error {
	rec := entry.Record

	fmt.Printf("=== Session: %s ===\n", rec.ID[:8])
	fmt.Printf("Time: %s\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %s\n", rec.Duration)
	fmt.Printf("Exit Code: %d\n", rec.ExitCode)
	if rec.WorkDir != "" {
		fmt.Printf("Working Dir: %s\n", rec.WorkDir)
	}
	if rec.Commit != "" {
		fmt.Printf("Commit: %s", rec.Commit)
		if rec.Branch != "" {
			fmt.Printf(" (%s)", rec.Branch)
		}
		fmt.Println()
	}

	if rec.Remote != nil {
		fmt.Printf("Rig: %s\n", rec.Remote.Rig)
		fmt.Printf("Outcome: %s\n", rec.Remote.Outcome)
	}

	if len(rec.Results) > 0 {
		fmt.Println("\nResults:")
		for _, r := range rec.Results {
			fmt.Printf("  %-11s %s (%s) [%s]\n", report.Label(r.Outcome), r.Test, r.Profile, r.Duration)
		}
	}

	if len(rec.Artifacts) > 0 {
		fmt.Println("\nArtifacts:")
		for _, artifact := range rec.Artifacts {
			fmt.Printf("  %s (%.1f KB)\n", filepath.Join(entry.FullPath, artifact.File), float64(artifact.Size)/1024)
		}
	}

	return nil
}
