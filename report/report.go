// Package report implements per-run status lines and the session summary.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/rigrun/rigrun/model"
)

// Banner literals consumed by the remote execution bridge. A remote rigrun
// invocation is judged solely on these substrings in its buffered output,
// so they must never change.
const (
	PassBanner = "All tests passed!"
	FailBanner = "Some tests failed:"
)

// Reporter writes one deterministic status line per completed (test,
// profile) run and a trailing summary with the session banner.
type Reporter struct {
	w io.Writer
}

func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Run prints the status line for one completed run.
func (r *Reporter) Run(res model.RunResult) {
	fmt.Fprintf(r.w, "%-11s %s (%s) [%s]\n",
		Label(res.Outcome), res.Test, res.Profile, res.Duration.Round(time.Millisecond))
}

// Summary prints the pass/fail counters, the session banner, and the list
// of failed (test, profile) pairs. It returns the process exit code: 0 iff
// no run failed, else 1.
func (r *Reporter) Summary(s *model.Session) int {
	succeeded, failed := s.Counters()

	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%d passed, %d failed\n", succeeded, failed)

	if failed == 0 {
		fmt.Fprintln(r.w, PassBanner)
		return 0
	}

	fmt.Fprintln(r.w, FailBanner)
	for _, res := range s.Failed() {
		fmt.Fprintf(r.w, "  %s (%s)\n", res.Test, res.Profile)
	}
	return 1
}

// Label maps an outcome to its fixed-width status token.
func Label(o model.Outcome) string {
	switch o {
	case model.OutcomePass:
		return "PASS"
	case model.OutcomeFail:
		return "FAIL"
	case model.OutcomeTimeout:
		return "TIMEOUT"
	case model.OutcomeBuildError:
		return "BUILD-ERROR"
	case model.OutcomeExecutionError:
		return "EXEC-ERROR"
	}
	return "UNKNOWN"
}
