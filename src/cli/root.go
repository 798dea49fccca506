package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the root cobra command for the tklbam CLI.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tklbam",
		Short:         "Back up and restore appliance filesystems and databases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd)

	cmd.AddCommand(newVersionCmd(stdout))
	cmd.AddCommand(newBackupCmd(stdout, stderr))
	cmd.AddCommand(newRestoreCmd(stdout, stderr))
	cmd.AddCommand(newPlanCmd(stdout, stderr))
	cmd.AddCommand(newResolveCmd(stdout, stderr))
	cmd.AddCommand(newListCmd(stdout, stderr))
	cmd.AddCommand(newKeyCmd(stdout))

	return cmd
}

// Execute runs the CLI with the process stdio.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
