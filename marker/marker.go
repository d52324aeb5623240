// Package marker classifies line-oriented device output using sentinel
// markers. Firmware under test emits plain text lines containing a literal
// success or failure token anywhere as a substring; the first terminal
// marker decides the verdict.
package marker

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// Default sentinel tokens emitted by the firmware test harness.
const (
	DefaultSuccessMarker = "TEST-SUCCESS"
	DefaultFailureMarker = "TEST-FAIL"
)

// Verdict is the terminal classification of an output stream.
type Verdict int

const (
	// Pass means a success marker was seen before any failure marker.
	Pass Verdict = iota
	// Fail means a failure marker was seen.
	Fail
	// Timeout means no terminal marker appeared before the deadline.
	Timeout
	// Indeterminate means the stream closed before any marker appeared.
	Indeterminate
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Timeout:
		return "timeout"
	case Indeterminate:
		return "indeterminate"
	}
	return "unknown"
}

// Config holds the marker sets and the scan deadline. The marker sets must
// be non-empty and disjoint. Matching is case-sensitive substring
// containment per line.
type Config struct {
	Success []string
	Failure []string
	Timeout time.Duration
}

// DefaultConfig returns a Config with the default sentinel tokens.
func DefaultConfig(timeout time.Duration) Config {
	return Config{
		Success: []string{DefaultSuccessMarker},
		Failure: []string{DefaultFailureMarker},
		Timeout: timeout,
	}
}

// Result carries the verdict, the line that decided it (empty for Timeout
// and Indeterminate), and every line observed up to and including the
// deciding one.
type Result struct {
	Verdict Verdict
	Line    string
	Lines   []string
}

// Output returns the observed lines joined back into a single block.
func (r Result) Output() string {
	return strings.Join(r.Lines, "\n")
}

// Scan reads r line by line, in arrival order, until a marker decides the
// verdict, the stream closes, or the timeout fires. Scanning stops at the
// first terminal marker; later lines cannot revise the verdict. When a line
// contains both a failure and a success marker, failure wins.
//
// Scan returning before EOF leaves the producer running; the caller owns
// the producing process and must terminate it.
func Scan(r io.Reader, cfg Config) Result {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	var deadline <-chan time.Time
	if cfg.Timeout > 0 {
		t := time.NewTimer(cfg.Timeout)
		defer t.Stop()
		deadline = t.C
	}

	var seen []string
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return Result{Verdict: Indeterminate, Lines: seen}
			}
			seen = append(seen, line)
			if v, terminal := classify(line, cfg); terminal {
				return Result{Verdict: v, Line: line, Lines: seen}
			}
		case <-deadline:
			return Result{Verdict: Timeout, Lines: seen}
		}
	}
}

// classify checks failure markers before success markers so that a line
// containing both yields the conservative verdict.
func classify(line string, cfg Config) (Verdict, bool) {
	for _, m := range cfg.Failure {
		if strings.Contains(line, m) {
			return Fail, true
		}
	}
	for _, m := range cfg.Success {
		if strings.Contains(line, m) {
			return Pass, true
		}
	}
	return Indeterminate, false
}
