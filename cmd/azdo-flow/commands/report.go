package commands

import (
	"encoding/json"
	"fmt"

	"azdo-flow/internal/visuals"
	"azdo-flow/internal/workitem"

	"github.com/spf13/cobra"
)

var (
	reportJSON        bool
	reportMermaid     bool
	reportConcurrency int
)

var reportCmd = &cobra.Command{
	Use:   "report [work-item-id...]",
	Short: "Print the per-state summary of work items",
	Long: `Prints a table per work item with days, hours and transitions per state, followed by
cycle time, lead time and the resolved count. Without ids the configured query is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := resolveItems(cmd.Context(), args)
		if err != nil {
			return err
		}
		summaries, err := workitem.LoadAll(cmd.Context(), items, reportConcurrency)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if reportJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		for _, s := range summaries {
			fmt.Fprintln(out, visuals.RenderStateTable(s, cfg.Workflow))
			if reportMermaid {
				fmt.Fprintln(out, visuals.GenerateStateDurationChart(s, cfg.Workflow))
				fmt.Fprintln(out, visuals.GenerateTimelineChart(s))
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print summaries as JSON")
	reportCmd.Flags().BoolVar(&reportMermaid, "mermaid", false, "append Mermaid charts per work item")
	reportCmd.Flags().IntVarP(&reportConcurrency, "concurrency", "c", 4, "work items fetched in parallel")
	rootCmd.AddCommand(reportCmd)
}
