package cli

// This file contains the build driver: it invokes the external build tool
// per (test, profile) under a wall-clock timeout of its own.

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/rigrun/rigrun/config"
	"github.com/rigrun/rigrun/model"
	"github.com/rigrun/rigrun/proc"
)

// buildArtifact builds one test under one profile and returns the artifact
// path. Tool diagnostics are surfaced verbatim in the returned output, not
// interpreted. The timeout is enforced here, independent of the tool's own
// behavior, and expiry force-terminates the tool's process tree.
func (a *App) buildArtifact(cfg *config.Config, test string, profile model.Profile) (string, string, error) {
	argv := make([]string, 0, len(cfg.Build.Command)+len(profile.Flags))
	for _, arg := range cfg.Build.Command {
		argv = append(argv, config.Expand(arg, test, profile.Name))
	}
	argv = append(argv, profile.Flags...)

	a.logger.Info().
		Str("test", test).
		Str("profile", profile.Name).
		Msg("Building test artifact")

	cmd := exec.Command(argv[0], argv[1:]...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	a.logger.Debug().
		Str("command", cmd.String()).
		Dur("timeout", profile.Timeout).
		Msg("Executing build tool")

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("failed to start build tool: %w", err)
	}

	var timedOut atomic.Bool
	timer := time.AfterFunc(profile.Timeout, func() {
		timedOut.Store(true)
		if err := proc.KillTree(cmd.Process.Pid); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to terminate build tool process tree")
		}
	})
	err := cmd.Wait()
	timer.Stop()

	if timedOut.Load() {
		return "", out.String(), fmt.Errorf("build timed out after %s", profile.Timeout)
	}
	if err != nil {
		return "", out.String(), fmt.Errorf("build failed: %w (output: %s)", err, out.String())
	}

	artifact := config.Expand(cfg.Build.Artifact, test, profile.Name)

	// Verify the artifact was created
	if _, err := os.Stat(artifact); err != nil {
		return "", out.String(), fmt.Errorf("artifact not found after build: %w", err)
	}

	return artifact, out.String(), nil
}
