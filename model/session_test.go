package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_CountersAlwaysSumToTotal(t *testing.T) {
	outcomes := []Outcome{
		OutcomePass, OutcomeFail, OutcomeTimeout,
		OutcomeBuildError, OutcomeExecutionError,
	}

	s := NewSession()
	tests := []string{"gpio-flex", "i2c-loopback", "uart", "wwdt", "rng"}
	for i, name := range tests {
		for _, profile := range []string{"debug", "release"} {
			err := s.Add(RunResult{
				Test:    name,
				Profile: profile,
				Outcome: outcomes[i%len(outcomes)],
			})
			require.NoError(t, err)
		}
	}
	s.Finalize()

	succeeded, failed := s.Counters()
	require.Equal(t, 2*len(tests), succeeded+failed)
	require.Equal(t, 2, succeeded)
	require.Equal(t, 8, failed)
	require.Equal(t, OutcomeFail, s.Overall())
}

func TestSession_OverallPassRequiresAllPass(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Add(RunResult{Test: "a", Profile: "debug", Outcome: OutcomePass}))
	require.NoError(t, s.Add(RunResult{Test: "a", Profile: "release", Outcome: OutcomePass}))
	require.Equal(t, OutcomePass, s.Overall())

	// Any non-pass outcome flips the session and it never flips back.
	require.NoError(t, s.Add(RunResult{Test: "b", Profile: "debug", Outcome: OutcomeTimeout}))
	require.Equal(t, OutcomeFail, s.Overall())
	require.NoError(t, s.Add(RunResult{Test: "b", Profile: "release", Outcome: OutcomePass}))
	require.Equal(t, OutcomeFail, s.Overall())
}

func TestSession_DuplicatePairRejected(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Add(RunResult{Test: "a", Profile: "debug", Outcome: OutcomePass}))

	err := s.Add(RunResult{Test: "a", Profile: "debug", Outcome: OutcomeFail})
	require.Error(t, err)
	require.Len(t, s.Results(), 1)
}

func TestSession_FinalizedRejectsAdd(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Add(RunResult{Test: "a", Profile: "debug", Outcome: OutcomePass}))
	s.Finalize()

	err := s.Add(RunResult{Test: "b", Profile: "debug", Outcome: OutcomePass})
	require.Error(t, err)
}

func TestSession_FailedPreservesDiscoveryOrder(t *testing.T) {
	s := NewSession()
	for i := 0; i < 4; i++ {
		outcome := OutcomePass
		if i%2 == 1 {
			outcome = OutcomeFail
		}
		require.NoError(t, s.Add(RunResult{
			Test:    fmt.Sprintf("t%d", i),
			Profile: "debug",
			Outcome: outcome,
		}))
	}

	failed := s.Failed()
	require.Len(t, failed, 2)
	require.Equal(t, "t1", failed[0].Test)
	require.Equal(t, "t3", failed[1].Test)
}
