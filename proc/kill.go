// Package proc force-terminates subprocess trees. Timeouts are enforced by
// the orchestrator itself, so expiry must take down the whole child tree or
// a stuck build/flash tool would keep the device handle locked.
package proc

import (
	"github.com/shirou/gopsutil/v3/process"
)

// KillTree kills pid and all of its descendants, deepest first. A pid that
// is already gone is not an error.
func KillTree(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		// Process already exited.
		return nil
	}

	children, err := p.Children()
	if err == nil {
		for _, c := range children {
			_ = KillTree(int(c.Pid))
		}
	}

	return p.Kill()
}
