package model

import (
	"fmt"
	"time"
)

// Outcome classifies the result of a single (test, profile) run.
type Outcome string

const (
	// OutcomePass means the device emitted a success marker.
	OutcomePass Outcome = "pass"
	// OutcomeFail means a failure marker was seen, or the output stream
	// closed without any marker at all.
	OutcomeFail Outcome = "fail"
	// OutcomeTimeout means no terminal marker appeared within the run budget.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeBuildError means the build tool failed or its timeout fired.
	OutcomeBuildError Outcome = "build-error"
	// OutcomeExecutionError means no verdict could be obtained at all
	// (launch failure, unreachable rig, failed snapshot restore).
	OutcomeExecutionError Outcome = "execution-error"
)

// Profile is a build configuration under which every test must
// independently pass.
type Profile struct {
	// Name of the profile (e.g. "debug", "release")
	Name string `json:"name"`
	// Extra flags passed to the build tool
	Flags []string `json:"flags,omitempty"`
	// Wall-clock budget for one build under this profile
	Timeout time.Duration `json:"timeout"`
}

// RunResult is the verdict for one (test, profile) pair. The outcome is set
// once on completion or timeout and never revised.
type RunResult struct {
	// Test is the identifier of the discovered test program
	Test string `json:"test"`
	// Profile name the test was built under
	Profile string `json:"profile"`
	// Outcome of the run
	Outcome Outcome `json:"outcome"`
	// Duration of build plus run
	Duration time.Duration `json:"duration"`
	// Output captured from the build tool or device, if any
	Output string `json:"output,omitempty"`
}

// Session accumulates RunResults in discovery order, one per
// (test, profile) pair, until it is finalized.
type Session struct {
	results   []RunResult
	seen      map[string]bool
	finalized bool
}

func NewSession() *Session {
	return &Session{seen: make(map[string]bool)}
}

// Add records one result. Each (test, profile) pair may be recorded exactly
// once, and only before the session is finalized.
func (s *Session) Add(r RunResult) error {
	if s.finalized {
		return fmt.Errorf("session is finalized, cannot record %s (%s)", r.Test, r.Profile)
	}
	key := r.Test + "\x00" + r.Profile
	if s.seen[key] {
		return fmt.Errorf("duplicate result for %s (%s)", r.Test, r.Profile)
	}
	s.seen[key] = true
	s.results = append(s.results, r)
	return nil
}

// Finalize freezes the session. Further Add calls fail.
func (s *Session) Finalize() {
	s.finalized = true
}

// Results returns all recorded results in discovery order.
func (s *Session) Results() []RunResult {
	return s.results
}

// Failed returns every non-pass result in discovery order.
func (s *Session) Failed() []RunResult {
	var failed []RunResult
	for _, r := range s.results {
		if r.Outcome != OutcomePass {
			failed = append(failed, r)
		}
	}
	return failed
}

// Counters returns the number of passed and failed runs. Every non-pass
// outcome counts as failed, so succeeded+failed always equals the total.
func (s *Session) Counters() (succeeded, failed int) {
	for _, r := range s.results {
		if r.Outcome == OutcomePass {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Overall is pass iff every recorded result passed.
func (s *Session) Overall() Outcome {
	if _, failed := s.Counters(); failed > 0 {
		return OutcomeFail
	}
	return OutcomePass
}
