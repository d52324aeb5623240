package cli

// This file contains the session orchestration: discovery, the sequential
// build-then-run loop over every (test, profile) pair, and verdict
// aggregation.

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rigrun/rigrun/config"
	"github.com/rigrun/rigrun/device"
	"github.com/rigrun/rigrun/model"
	"github.com/rigrun/rigrun/report"
)

func (a *App) run(ctx *cli.Context) error {
	startTime := time.Now()

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	// Generate random 16-byte session ID
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return fmt.Errorf("failed to generate session ID: %w", err)
	}

	record := &model.SessionRecord{
		ID:        hex.EncodeToString(idBytes),
		Timestamp: startTime,
		Args:      os.Args,
	}

	// Capture working directory
	if cwd, err := os.Getwd(); err == nil {
		record.WorkDir = cwd
	}

	// Capture git info (non-fatal if it fails)
	if commit, branch, err := a.getGitInfo(); err == nil {
		record.Commit = commit
		record.Branch = branch
	}

	tests, err := discoverTests(cfg)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		return fmt.Errorf("no test programs found in %s", cfg.TestsDir)
	}
	a.logger.Info().
		Int("tests", len(tests)).
		Int("profiles", len(cfg.Profiles)).
		Msg("Discovered test programs")

	if ctx.Bool("remote") || !a.probeAttached(cfg) {
		return a.runRemote(cfg, record, startTime)
	}

	return a.runLocal(cfg, record, tests, startTime)
}

func (a *App) runLocal(cfg *config.Config, record *model.SessionRecord, tests []string, startTime time.Time) error {
	a.logger.Info().Msg("Running tests on the attached device")

	session := model.NewSession()
	reporter := report.New(os.Stdout)
	handle := &device.Handle{}
	runner := device.NewRunner(a.logger, handle, cfg.Flash.Command, cfg.MarkerConfig())

	// Strictly sequential: one build-then-run cycle completes or times out
	// before the next begins. One probe, one in-flight run.
	profiles := cfg.BuildProfiles()
	for _, test := range tests {
		for _, profile := range profiles {
			result := a.runOne(cfg, runner, test, profile)
			if err := session.Add(result); err != nil {
				return err
			}
			reporter.Run(result)
		}
	}
	session.Finalize()

	exitCode := reporter.Summary(session)

	record.Results = session.Results()
	record.ExitCode = exitCode
	record.Duration = time.Since(startTime)
	if err := a.recordSession(record, sessionOutput(session)); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record session history")
	}

	if exitCode != 0 {
		return cli.Exit("", exitCode)
	}
	return nil
}

// runOne builds and runs a single (test, profile) pair. Every failure mode
// is folded into the result; one bad pair never aborts the rest of the
// suite.
func (a *App) runOne(cfg *config.Config, runner *device.Runner, test string, profile model.Profile) model.RunResult {
	start := time.Now()

	artifact, buildOut, err := a.buildArtifact(cfg, test, profile)
	if err != nil {
		a.logger.Error().Err(err).
			Str("test", test).
			Str("profile", profile.Name).
			Msg("Build failed")
		return model.RunResult{
			Test:     test,
			Profile:  profile.Name,
			Outcome:  model.OutcomeBuildError,
			Duration: time.Since(start),
			Output:   buildOut,
		}
	}

	outcome, runOut := runner.Run(artifact)
	return model.RunResult{
		Test:     test,
		Profile:  profile.Name,
		Outcome:  outcome,
		Duration: time.Since(start),
		Output:   runOut,
	}
}

// sessionOutput merges the per-run captured output into one annotated blob
// for the history artifact.
func sessionOutput(session *model.Session) string {
	var out string
	for _, r := range session.Results() {
		if r.Output == "" {
			continue
		}
		out += fmt.Sprintf("=== %s (%s): %s ===\n%s\n\n", r.Test, r.Profile, r.Outcome, r.Output)
	}
	return out
}
