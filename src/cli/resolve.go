package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/resolve"
)

func newResolveCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "resolve [override ...]",
		Short: "Show what a backup would include after overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseExtraOverrides(args)
			if err != nil {
				return err
			}
			c, err := loadConf(cmd)
			if err != nil {
				return err
			}
			e, _, err := buildEngine(cmd, c, extra, false)
			if err != nil {
				return err
			}
			inc, err := e.ResolveInclusions()
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(inc)
			case "table", "":
				return renderInclusion(stdout, inc)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().String("overrides", "", "Path of the override list file")
	cmd.Flags().Bool("skip-files", false, "Leave out filesystem paths")
	cmd.Flags().Bool("skip-database", false, "Leave out databases")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func renderInclusion(w io.Writer, inc resolve.Inclusion) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTARGET")
	for _, p := range inc.Paths {
		fmt.Fprintf(tw, "path\t%s\n", p)
	}
	for _, db := range inc.Databases {
		fmt.Fprintf(tw, "database\t%s\n", db)
	}
	for _, t := range inc.Tables {
		fmt.Fprintf(tw, "table\t%s/%s\n", t.Database, t.Name)
	}
	for _, t := range inc.ExcludedTables {
		fmt.Fprintf(tw, "excluded-table\t%s/%s\n", t.Database, t.Name)
	}
	return tw.Flush()
}
