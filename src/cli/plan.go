package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeff-dagenais/tklbam/src/conf"
)

func newPlanCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show whether the next backup session will be full or incremental",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConf(cmd)
			if err != nil {
				return err
			}
			e, _, err := buildEngine(cmd, c, nil, false)
			if err != nil {
				return err
			}
			plan, err := e.PlanNextSession(time.Now())
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Type     string `json:"type"`
					ParentID string `json:"parentId,omitempty"`
				}{string(plan.Type), plan.ParentID})
			case "text", "":
				if plan.ParentID == "" {
					fmt.Fprintf(stdout, "next session: %s\n", plan.Type)
				} else {
					fmt.Fprintf(stdout, "next session: %s (parent %s)\n", plan.Type, plan.ParentID)
				}
				return nil
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().String("full-backup", conf.DefaultFullBackup, "Full session frequency, format <int>[HDWM]")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text|json")
	return cmd
}
