package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/registry"
)

// listRow joins the chain record with what the backend reports about the
// materialized session.
type listRow struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ParentID  string `json:"parentId,omitempty"`
	CreatedAt string `json:"createdAt"`
	Size      uint64 `json:"size,omitempty"`
}

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded backup sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConf(cmd)
			if err != nil {
				return err
			}
			reg := registry.New(c.Registry)
			store := chain.NewFileStore(reg.SessionsPath())
			sessions, err := store.List()
			if err != nil {
				return err
			}

			// Sizes come from the backend; a missing or unreachable
			// target just leaves them blank.
			sizes := map[string]uint64{}
			if tr, terr := buildTransport(c, reg); terr == nil {
				if entries, lerr := tr.List(); lerr == nil {
					for _, e := range entries {
						sizes[e.ID] = e.Size
					}
				}
			}

			rows := make([]listRow, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, listRow{
					ID:        s.ID,
					Type:      string(s.Type),
					ParentID:  s.ParentID,
					CreatedAt: s.CreatedAt.UTC().Format("20060102T150405Z"),
					Size:      sizes[s.ID],
				})
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case "table", "":
				return renderSessions(stdout, rows)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func renderSessions(w io.Writer, rows []listRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPARENT\tCREATED\tSIZE")
	for _, r := range rows {
		size := ""
		if r.Size > 0 {
			size = humanize.IBytes(r.Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Type, r.ParentID, r.CreatedAt, size)
	}
	return tw.Flush()
}
