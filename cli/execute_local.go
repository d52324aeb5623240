package cli

// This file contains probe detection for choosing between local device
// execution and the remote rig.

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/rigrun/rigrun/config"
)

// probeAttached reports whether a debug probe is locally attached, by
// running the configured detect command. The detect tool is expected to
// exit non-zero or print nothing when no probe is present; probe-rs
// instead prints a "No debug probes" notice, which is recognized too.
func (a *App) probeAttached(cfg *config.Config) bool {
	if len(cfg.Flash.Detect) == 0 {
		return true
	}

	cmd := exec.Command(cfg.Flash.Detect[0], cfg.Flash.Detect[1:]...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		a.logger.Debug().Err(err).Msg("Probe detection command failed")
		return false
	}

	output := strings.TrimSpace(out.String())
	if output == "" || strings.Contains(output, "No debug probes") {
		a.logger.Debug().Msg("No debug probe attached")
		return false
	}

	a.logger.Debug().Str("probes", output).Msg("Debug probe detected")
	return true
}
