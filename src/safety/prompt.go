// Package safety gates destructive operations behind confirmation.
// Restores overwrite live system state, so they prompt unless the run is
// non-interactive (--yes) or a simulation.
package safety

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options mirror the global CLI flags.
type Options struct {
	// Simulate means no changes will be made; prompts are skipped and
	// treated as declined.
	Simulate bool
	// Yes answers every prompt affirmatively without asking.
	Yes bool
	// Force allows operations that are refused even with Yes, such as
	// restoring over a newer chain.
	Force bool
}

// Confirm prompts the user before a destructive action.
//   - Simulate: returns false with no error; nothing should be changed.
//   - Yes: returns true without prompting.
//
// The caller decides what to do with the answer.
func Confirm(opts Options, in io.Reader, out io.Writer, question string) (bool, error) {
	if opts.Simulate {
		return false, nil
	}
	if opts.Yes {
		return true, nil
	}
	if out != nil {
		fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	ans := strings.TrimSpace(strings.ToLower(line))
	return ans == "y" || ans == "yes", nil
}
