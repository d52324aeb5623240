// Package device executes firmware artifacts on the locally attached
// target. Exactly one debug probe is available, so the package enforces one
// in-flight run per handle and guarantees teardown of the flash tool on
// every exit path.
package device

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rigrun/rigrun/marker"
	"github.com/rigrun/rigrun/model"
	"github.com/rigrun/rigrun/proc"
)

// Handle guards the single probe/device link. It is injected into whoever
// runs against the device instead of living as ambient global state.
type Handle struct {
	mu sync.Mutex
}

// Lease is one acquisition of the handle. Release is safe to call from any
// exit path and takes effect exactly once.
type Lease struct {
	h    *Handle
	once sync.Once
}

// Acquire takes the handle, failing immediately if a run is already in
// flight. Concurrent access would corrupt the flash/debug session.
func (h *Handle) Acquire() (*Lease, error) {
	if !h.mu.TryLock() {
		return nil, errors.New("device busy: only one run per probe may be in flight")
	}
	return &Lease{h: h}, nil
}

func (l *Lease) Release() {
	l.once.Do(l.h.mu.Unlock)
}

// Runner flashes and executes one artifact at a time via the external
// flash/execute tool, relaying the tool's live output to the marker
// scanner.
type Runner struct {
	logger  zerolog.Logger
	handle  *Handle
	command []string
	markers marker.Config
}

// NewRunner returns a Runner using the given flash command. Command
// elements may contain the {artifact} placeholder; when none does, the
// artifact path is appended as the final argument.
func NewRunner(logger zerolog.Logger, handle *Handle, command []string, markers marker.Config) *Runner {
	return &Runner{
		logger:  logger,
		handle:  handle,
		command: command,
		markers: markers,
	}
}

// Run transfers and launches artifact on the device and scans its live
// output for a terminal marker. The flash tool's process tree is terminated
// and the device handle released on every exit path: normal completion,
// terminal verdict, or timeout.
func (r *Runner) Run(artifact string) (model.Outcome, string) {
	lease, err := r.handle.Acquire()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to acquire device handle")
		return model.OutcomeExecutionError, ""
	}
	defer lease.Release()

	argv := expandCommand(r.command, artifact)
	cmd := exec.Command(argv[0], argv[1:]...)

	// One pipe carries stdout and stderr merged, so marker lines keep their
	// arrival order across both streams.
	pr, pw, err := os.Pipe()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to create output pipe")
		return model.OutcomeExecutionError, ""
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	r.logger.Debug().
		Str("artifact", artifact).
		Strs("command", argv).
		Msg("Launching artifact on device")

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		r.logger.Error().Err(err).Msg("Failed to start flash tool")
		return model.OutcomeExecutionError, ""
	}
	// The child holds its own copy of the write end.
	pw.Close()

	res := marker.Scan(pr, r.markers)

	// Tear down the device process whichever path ended the scan. The tool
	// may have exited on its own already; KillTree tolerates that.
	if err := proc.KillTree(cmd.Process.Pid); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to terminate flash tool process tree")
	}
	_ = cmd.Wait()
	pr.Close()

	r.logger.Debug().
		Stringer("verdict", res.Verdict).
		Int("lines", len(res.Lines)).
		Msg("Device run finished")

	return mapVerdict(res.Verdict), res.Output()
}

func expandCommand(command []string, artifact string) []string {
	argv := make([]string, 0, len(command)+1)
	substituted := false
	for _, arg := range command {
		if strings.Contains(arg, "{artifact}") {
			arg = strings.ReplaceAll(arg, "{artifact}", artifact)
			substituted = true
		}
		argv = append(argv, arg)
	}
	if !substituted {
		argv = append(argv, artifact)
	}
	return argv
}

// mapVerdict folds the ambiguous no-marker-at-EOF case into Fail: a stream
// that ends without a verdict never passes.
func mapVerdict(v marker.Verdict) model.Outcome {
	switch v {
	case marker.Pass:
		return model.OutcomePass
	case marker.Timeout:
		return model.OutcomeTimeout
	default:
		return model.OutcomeFail
	}
}
