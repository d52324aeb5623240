package device

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rigrun/rigrun/marker"
	"github.com/rigrun/rigrun/model"
)

func testRunner(t *testing.T, command []string, timeout time.Duration) *Runner {
	t.Helper()
	return NewRunner(zerolog.Nop(), &Handle{}, command, marker.DefaultConfig(timeout))
}

func TestHandle_SingleAcquisition(t *testing.T) {
	h := &Handle{}

	lease, err := h.Acquire()
	require.NoError(t, err)

	_, err = h.Acquire()
	require.Error(t, err)

	// Release is idempotent and frees the handle exactly once.
	lease.Release()
	lease.Release()

	lease2, err := h.Acquire()
	require.NoError(t, err)
	lease2.Release()
}

func TestRunner_PassVerdict(t *testing.T) {
	r := testRunner(t, []string{"sh", "-c", "echo boot; echo TEST-SUCCESS"}, 5*time.Second)

	outcome, output := r.Run("artifact.elf")

	require.Equal(t, model.OutcomePass, outcome)
	require.Contains(t, output, "TEST-SUCCESS")
}

func TestRunner_FailVerdictStopsEarly(t *testing.T) {
	// The tool keeps producing after the failure line; the verdict must be
	// reached without waiting for the stream to close.
	r := testRunner(t, []string{"sh", "-c", "echo TEST-FAIL; sleep 30; echo TEST-SUCCESS"}, 10*time.Second)

	start := time.Now()
	outcome, _ := r.Run("artifact.elf")

	require.Equal(t, model.OutcomeFail, outcome)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestRunner_TimeoutTerminatesTool(t *testing.T) {
	r := testRunner(t, []string{"sh", "-c", "echo boot; sleep 30"}, 200*time.Millisecond)

	start := time.Now()
	outcome, output := r.Run("artifact.elf")

	require.Equal(t, model.OutcomeTimeout, outcome)
	require.Contains(t, output, "boot")
	// Run must not block on the sleeping child after the deadline.
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestRunner_NoMarkerAtExitFailsClosed(t *testing.T) {
	r := testRunner(t, []string{"sh", "-c", "echo boot; echo done"}, 5*time.Second)

	outcome, _ := r.Run("artifact.elf")

	require.Equal(t, model.OutcomeFail, outcome)
}

func TestRunner_LaunchFailureIsExecutionError(t *testing.T) {
	r := testRunner(t, []string{"/nonexistent/flash-tool"}, time.Second)

	outcome, _ := r.Run("artifact.elf")

	require.Equal(t, model.OutcomeExecutionError, outcome)
}

func TestRunner_ReleasesHandleOnEveryPath(t *testing.T) {
	h := &Handle{}
	r := NewRunner(zerolog.Nop(), h, []string{"sh", "-c", "echo TEST-FAIL"}, marker.DefaultConfig(time.Second))

	r.Run("artifact.elf")

	// Handle must be free again after the run.
	lease, err := h.Acquire()
	require.NoError(t, err)
	lease.Release()
}

func TestExpandCommand(t *testing.T) {
	argv := expandCommand([]string{"probe-rs", "run", "{artifact}"}, "target/debug/gpio")
	require.Equal(t, []string{"probe-rs", "run", "target/debug/gpio"}, argv)

	argv = expandCommand([]string{"probe-rs", "run"}, "target/debug/gpio")
	require.Equal(t, []string{"probe-rs", "run", "target/debug/gpio"}, argv)
}
