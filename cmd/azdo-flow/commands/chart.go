package commands

import (
	"azdo-flow/internal/visuals"
	"azdo-flow/internal/workitem"

	"github.com/spf13/cobra"
)

var (
	chartOutput      string
	chartOpen        bool
	chartConcurrency int
)

var chartCmd = &cobra.Command{
	Use:   "chart [work-item-id...]",
	Short: "Write a stacked comparison chart of time in state",
	Long: `Writes an HTML page with one bar per state and one stack segment per work item.
Without ids the configured query is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := resolveItems(cmd.Context(), args)
		if err != nil {
			return err
		}
		summaries, err := workitem.LoadAll(cmd.Context(), items, chartConcurrency)
		if err != nil {
			return err
		}
		return visuals.WriteStackedHTML(chartOutput, summaries, cfg.Workflow, chartOpen)
	},
}

func init() {
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "stacked_work_items_comparison.html", "HTML file to write")
	chartCmd.Flags().BoolVar(&chartOpen, "open", false, "open the chart in the default browser")
	chartCmd.Flags().IntVarP(&chartConcurrency, "concurrency", "c", 4, "work items fetched in parallel")
	rootCmd.AddCommand(chartCmd)
}
