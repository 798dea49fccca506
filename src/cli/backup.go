package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/conf"
	"github.com/jeff-dagenais/tklbam/src/hub"
	"github.com/jeff-dagenais/tklbam/src/keys"
	"github.com/jeff-dagenais/tklbam/src/logging"
)

func newBackupCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [override ...]",
		Short: "Back up the system",
		Long: `Back up the system.

Overrides adjust what gets backed up:
  /path/to/include        include a filesystem path
  -/path/to/exclude       exclude a filesystem path
  mysql:dbname            include a database
  -mysql:dbname/table     exclude a table

Default overrides are read from the configured overrides file; arguments
apply after it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseExtraOverrides(args)
			if err != nil {
				return err
			}
			c, err := loadConf(cmd)
			if err != nil {
				return err
			}
			opts := getSafetyOptions(cmd)
			c.Simulate = c.Simulate || opts.Simulate

			if c.S3ParallelUploads > 1 && c.S3ParallelUploads > c.Volsize/5 {
				logging.Warn().Msg("s3-parallel-uploads > volsize / 5 (minimum upload chunk is 5MB)")
			}

			e, reg, err := buildEngine(cmd, c, extra, !c.Simulate)
			if err != nil {
				return err
			}

			if c.Simulate {
				inc, err := e.ResolveInclusions()
				if err != nil {
					return err
				}
				plan, err := e.PlanNextSession(time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "simulated %s session\n", plan.Type)
				if plan.ParentID != "" {
					fmt.Fprintf(stdout, "parent: %s\n", plan.ParentID)
				}
				return renderInclusion(stdout, inc)
			}

			key, err := keys.Load(reg.SecretPath())
			if err != nil {
				return err
			}
			logging.Debug().Str("fingerprint", key.Fingerprint()).Msg("escrow key loaded")

			session, err := e.Backup(time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "completed %s session %s\n", session.Type, session.ID)

			// Best-effort hub notification; the backup itself is done.
			if c.Address == "" {
				if addr, aerr := resolveAddress(c, reg); aerr == nil {
					hb := hub.New(c.HubURL, c.HubAPIKey)
					if uerr := hb.UpdatedBackup(addr); uerr != nil {
						logging.Warn().Err(uerr).Msg("could not notify hub of completed backup")
					}
				}
			}
			return nil
		},
	}
	addBackupFlags(cmd)
	return cmd
}

// addBackupFlags registers the configurable options; they resolve with
// precedence command line > config file > built-in default.
func addBackupFlags(cmd *cobra.Command) {
	cmd.Flags().String("full-backup", conf.DefaultFullBackup, "Full session frequency, format <int>[HDWM] (e.g. 3D, 2W)")
	cmd.Flags().Int("volsize", conf.DefaultVolsize, "Size of backup volumes in MB")
	cmd.Flags().Int("s3-parallel-uploads", conf.DefaultS3ParallelUploads, "Number of parallel volume chunk uploads")
	cmd.Flags().String("overrides", "", "Path of the override list file")
	cmd.Flags().Bool("skip-files", false, "Don't back up the filesystem")
	cmd.Flags().Bool("skip-database", false, "Don't back up databases")
	cmd.Flags().Bool("skip-packages", false, "Don't back up newly installed packages")
}
