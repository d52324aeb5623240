// Package rig proxies a test session to a remote rig controller and keeps
// the rig's baseline state intact across runs. The rig is a singleton,
// externally owned resource with no locking of its own: the unconditional
// restore-before/restore-after protocol is the only hygiene mechanism.
package rig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"

	"github.com/rigrun/rigrun/model"
	"github.com/rigrun/rigrun/report"
)

// Commander runs one command on the rig controller and returns its combined
// output. Output must be returned even when the command exits non-zero,
// since a failing remote session still carries the verdict banner.
type Commander interface {
	RunCommand(command string) (string, error)
}

// RestorePolicy selects when the baseline snapshot is restored.
type RestorePolicy string

const (
	RestoreBefore RestorePolicy = "before"
	RestoreAfter  RestorePolicy = "after"
	RestoreBoth   RestorePolicy = "both"
)

// State names the rig's baseline snapshot and how it is applied.
type State struct {
	// Domain is the rig VM name in the virtualization layer.
	Domain string
	// Snapshot is the named baseline snapshot.
	Snapshot string
	// RestoreCommand, when set, replaces the default virsh invocation.
	RestoreCommand string
	// Policy selects restore-before, restore-after, or both.
	Policy RestorePolicy
	// SettleDelay tolerates asynchronous reconnect/boot latency after a
	// restore.
	SettleDelay time.Duration
}

// Bridge executes the full session remotely. The remote side runs the local
// pipeline end to end and returns buffered combined output; there is no
// live stream at this layer.
type Bridge struct {
	logger     zerolog.Logger
	commander  Commander
	state      State
	runCommand string
	sleep      func(time.Duration)
}

func New(logger zerolog.Logger, commander Commander, state State, runCommand string) *Bridge {
	return &Bridge{
		logger:     logger,
		commander:  commander,
		state:      state,
		runCommand: runCommand,
		sleep:      time.Sleep,
	}
}

// Execute restores the rig to its baseline, runs the remote session, and
// restores again on every exit path. The buffered remote output is mapped
// to a session-level outcome by its banner; absence of a banner or a
// channel failure yields OutcomeExecutionError, meaning no verdict was
// obtainable.
func (b *Bridge) Execute() (model.Outcome, string, error) {
	if b.state.Policy == RestoreAfter || b.state.Policy == RestoreBoth {
		// Unconditional, so the rig is never left dirty for the next user.
		defer func() {
			if err := b.restore(); err != nil {
				b.logger.Warn().Err(err).Msg("Post-session snapshot restore failed; rig may be dirty")
			}
		}()
	}

	if b.state.Policy == RestoreBefore || b.state.Policy == RestoreBoth {
		if err := b.restore(); err != nil {
			return model.OutcomeExecutionError, "", fmt.Errorf("baseline restore failed: %w", err)
		}
		b.sleep(b.state.SettleDelay)
	}

	b.logger.Info().Str("command", b.runCommand).Msg("Running session on remote rig")
	out, runErr := b.commander.RunCommand(b.runCommand)

	// The banner decides the verdict; the remote exit status alone does
	// not, because a failing suite exits non-zero while still carrying it.
	switch {
	case strings.Contains(out, report.FailBanner):
		return model.OutcomeFail, out, nil
	case strings.Contains(out, report.PassBanner):
		return model.OutcomePass, out, nil
	case runErr != nil:
		return model.OutcomeExecutionError, out, fmt.Errorf("remote session failed: %w", runErr)
	default:
		return model.OutcomeExecutionError, out, errors.New("remote output contained no verdict banner")
	}
}

func (b *Bridge) restore() error {
	command := b.state.RestoreCommand
	if command == "" {
		command = fmt.Sprintf("virsh snapshot-revert --domain %s --snapshotname %s",
			shellescape.Quote(b.state.Domain), shellescape.Quote(b.state.Snapshot))
	}

	b.logger.Info().
		Str("domain", b.state.Domain).
		Str("snapshot", b.state.Snapshot).
		Msg("Restoring rig to baseline snapshot")

	if _, err := b.commander.RunCommand(command); err != nil {
		return err
	}
	return nil
}
