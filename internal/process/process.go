// Package process stops the headless browser started for PDF export,
// together with the renderer and GPU helpers it forks.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID rejects pids that would address the caller's own group.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree force-kills pid and its descendants.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
