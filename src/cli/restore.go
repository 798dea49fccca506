package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/safety"
	"github.com/jeff-dagenais/tklbam/src/util/progress"
)

func newRestoreCmd(stdout, stderr io.Writer) *cobra.Command {
	var planOnly bool
	var staging string
	cmd := &cobra.Command{
		Use:   "restore SESSION-ID",
		Short: "Restore the system from a backup session",
		Long: `Restore the system from a backup session.

The full restore chain is assembled first: the chain's full session, then
every incremental down to the target, replayed in order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID := args[0]
			c, err := loadConf(cmd)
			if err != nil {
				return err
			}
			e, _, err := buildEngine(cmd, c, nil, !planOnly)
			if err != nil {
				return err
			}

			plan, err := e.RestorePlan(targetID)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "restore chain for %s (%d sessions):\n", targetID, len(plan))
			for i, s := range plan {
				fmt.Fprintf(stdout, "  %d. %s %s\n", i+1, s.Type, s.ID)
			}
			if planOnly {
				return nil
			}

			opts := getSafetyOptions(cmd)
			ok, err := confirmRestore(cmd, stdout, len(plan))
			if err != nil {
				return err
			}
			if !ok {
				if opts.Simulate {
					fmt.Fprintln(stdout, "simulate: no sessions replayed")
					return nil
				}
				fmt.Fprintln(stdout, "restore aborted")
				return nil
			}

			if err := os.MkdirAll(staging, 0o755); err != nil {
				return fmt.Errorf("create staging dir: %w", err)
			}
			i := 0
			err = e.Restore(targetID, func(s chain.Session, r io.Reader) error {
				i++
				name := fmt.Sprintf("%02d-%s-%s.json", i, s.Type, s.ID)
				f, err := os.Create(filepath.Join(staging, name))
				if err != nil {
					return err
				}
				defer f.Close()
				label := fmt.Sprintf("%s %s", s.Type, s.ID)
				_, err = io.Copy(f, progress.NewReader(r, 0, label, stderr))
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "replayed %d sessions into %s\n", len(plan), staging)
			return nil
		},
	}
	cmd.Flags().BoolVar(&planOnly, "plan-only", false, "Print the restore chain without fetching anything")
	cmd.Flags().StringVar(&staging, "staging", "/var/cache/tklbam/restore", "Directory the fetched sessions are staged into")
	return cmd
}

func confirmRestore(cmd *cobra.Command, stdout io.Writer, sessions int) (bool, error) {
	opts := getSafetyOptions(cmd)
	question := fmt.Sprintf("Restore will overwrite current system state from %d sessions. Continue?", sessions)
	return safety.Confirm(opts, cmd.InOrStdin(), stdout, question)
}
