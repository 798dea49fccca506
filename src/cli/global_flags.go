package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/conf"
	"github.com/jeff-dagenais/tklbam/src/logging"
	"github.com/jeff-dagenais/tklbam/src/safety"
)

// addGlobalFlags adds the persistent flags shared by every command.
func addGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolP("simulate", "s", false, "Simulate operation; don't change anything")
	pf.BoolP("yes", "y", false, "Assume 'yes' to prompts and run non-interactively")
	pf.Bool("force", false, "Force potentially dangerous operations")
	pf.BoolP("quiet", "q", false, "Be less verbose")
	pf.String("logfile", "", "Also append log output to this file")
	pf.String("conf-dir", conf.DefaultConfDir, "Configuration directory")
	pf.String("registry", conf.DefaultRegistryDir, "Local state directory")
	pf.String("profile", "", "Use a local profile file instead of the hub")
	pf.String("address", "", "Manual backup target address (e.g. dir:/path)")
	pf.String("lockfile", conf.DefaultLockfile, "Exclusive backup lock file")
}

// getSafetyOptions reads global flags into a safety.Options struct.
func getSafetyOptions(cmd *cobra.Command) safety.Options {
	pf := cmd.Root().PersistentFlags()
	simulate, _ := pf.GetBool("simulate")
	yes, _ := pf.GetBool("yes")
	force, _ := pf.GetBool("force")
	return safety.Options{Simulate: simulate, Yes: yes, Force: force}
}

// setupLogging initializes the global logger from --quiet and --logfile.
// A logfile gets every run separated by a timestamp banner, matching the
// long-standing log format operators grep through.
func setupLogging(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	quiet, _ := pf.GetBool("quiet")
	logfile, _ := pf.GetString("logfile")

	level := "info"
	if quiet {
		level = "warn"
	}
	out := io.Writer(os.Stderr)
	if logfile != "" {
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("logfile %q is not writeable: %w", logfile, err)
		}
		banner := fmt.Sprintf("### %s ###", time.Now().Format(time.ANSIC))
		fmt.Fprintln(f, banner)
		out = io.MultiWriter(os.Stderr, f)
	}
	logging.Init(logging.Config{Level: level, Output: out})
	return nil
}
