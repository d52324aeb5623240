package cli

// This file contains remote session execution: when no probe is attached
// locally the whole session is proxied to the rig controller over SSH.

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rigrun/rigrun/cli/ssh"
	"github.com/rigrun/rigrun/config"
	"github.com/rigrun/rigrun/model"
	"github.com/rigrun/rigrun/rig"
)

func (a *App) runRemote(cfg *config.Config, record *model.SessionRecord, startTime time.Time) error {
	if cfg.Rig.Host == "" {
		return fmt.Errorf("no debug probe attached and no remote rig configured (rig.host)")
	}

	a.logger.Info().Str("rig", cfg.Rig.Host).Msg("Proxying session to remote rig")

	opts := ssh.Options{
		KeyFile:        cfg.Rig.KeyFile,
		ConnectTimeout: 10 * time.Second,
	}
	if err := ssh.ParseTarget(cfg.Rig.Host, &opts); err != nil {
		return err
	}

	client, err := ssh.New(a.logger, &opts)
	if err != nil {
		return fmt.Errorf("failed to reach rig controller: %w", err)
	}
	defer client.Close()

	bridge := rig.New(a.logger, client, rig.State{
		Domain:         cfg.Rig.Domain,
		Snapshot:       cfg.Rig.Snapshot,
		RestoreCommand: cfg.Rig.RestoreCommand,
		Policy:         rig.RestorePolicy(cfg.Rig.Restore),
		SettleDelay:    time.Duration(cfg.Rig.SettleDelay),
	}, cfg.Rig.RunCommand)

	outcome, output, err := bridge.Execute()
	if err != nil {
		a.logger.Error().Err(err).Msg("Remote session did not produce a verdict")
	}

	// Relay the remote session's buffered output verbatim.
	fmt.Fprint(os.Stdout, output)

	record.Remote = &model.RemoteRun{
		Rig:     cfg.Rig.Host,
		Outcome: outcome,
	}
	record.ExitCode = 0
	if outcome != model.OutcomePass {
		record.ExitCode = 1
	}
	record.Duration = time.Since(startTime)
	if err := a.recordSession(record, output); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record session history")
	}

	if record.ExitCode != 0 {
		return cli.Exit("", record.ExitCode)
	}
	return nil
}
