package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/keys"
	"github.com/jeff-dagenais/tklbam/src/registry"
)

func newKeyCmd(stdout io.Writer) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the escrow key fingerprint",
		Long: `Print the escrow key fingerprint.

The escrow key decrypts your backups independently of any passphrase.
With --show the key material itself is printed; keep a copy somewhere
safe and offline, because losing it means losing access to the backups.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConf(cmd)
			if err != nil {
				return err
			}
			reg := registry.New(c.Registry)
			key, err := keys.Load(reg.SecretPath())
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "fingerprint: %s\n", key.Fingerprint())
			if show {
				fmt.Fprintln(stdout, key.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the key material, not just the fingerprint")
	return cmd
}
