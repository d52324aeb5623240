package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rigrun/rigrun/model"
)

func TestReporter_RunLine(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Run(model.RunResult{
		Test:     "gpio-flex",
		Profile:  "debug",
		Outcome:  model.OutcomePass,
		Duration: 1200 * time.Millisecond,
	})

	require.Equal(t, "PASS        gpio-flex (debug) [1.2s]\n", buf.String())
}

func TestReporter_SummaryAllPassed(t *testing.T) {
	s := model.NewSession()
	require.NoError(t, s.Add(model.RunResult{Test: "a", Profile: "debug", Outcome: model.OutcomePass}))
	require.NoError(t, s.Add(model.RunResult{Test: "a", Profile: "release", Outcome: model.OutcomePass}))
	s.Finalize()

	var buf bytes.Buffer
	code := New(&buf).Summary(s)

	require.Equal(t, 0, code)
	require.Contains(t, buf.String(), "2 passed, 0 failed")
	require.Contains(t, buf.String(), PassBanner)
	require.NotContains(t, buf.String(), FailBanner)
}

func TestReporter_SummaryListsFailures(t *testing.T) {
	s := model.NewSession()
	require.NoError(t, s.Add(model.RunResult{Test: "gpio-flex", Profile: "debug", Outcome: model.OutcomePass}))
	require.NoError(t, s.Add(model.RunResult{Test: "gpio-flex", Profile: "release", Outcome: model.OutcomeTimeout}))
	require.NoError(t, s.Add(model.RunResult{Test: "i2c-loopback", Profile: "debug", Outcome: model.OutcomeBuildError}))
	s.Finalize()

	var buf bytes.Buffer
	code := New(&buf).Summary(s)

	require.Equal(t, 1, code)
	out := buf.String()
	require.Contains(t, out, "1 passed, 2 failed")
	require.Contains(t, out, FailBanner)
	require.Contains(t, out, "  gpio-flex (release)\n")
	require.Contains(t, out, "  i2c-loopback (debug)\n")
	require.NotContains(t, out, PassBanner)

	// Failure list follows the banner in discovery order.
	idx := strings.Index(out, FailBanner)
	require.Less(t, idx, strings.Index(out, "gpio-flex (release)"))
	require.Less(t, strings.Index(out, "gpio-flex (release)"), strings.Index(out, "i2c-loopback (debug)"))
}

func TestLabel_CoversAllOutcomes(t *testing.T) {
	for outcome, want := range map[model.Outcome]string{
		model.OutcomePass:           "PASS",
		model.OutcomeFail:           "FAIL",
		model.OutcomeTimeout:        "TIMEOUT",
		model.OutcomeBuildError:     "BUILD-ERROR",
		model.OutcomeExecutionError: "EXEC-ERROR",
	} {
		require.Equal(t, want, Label(outcome))
	}
}
