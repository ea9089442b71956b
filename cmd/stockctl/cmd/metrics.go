package cmd

import (
	"github.com/spf13/cobra"

	"stockplane/internal/importer"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect and maintain strategy performance history",
}

var metricsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print per-strategy day buckets, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := buildEngine(importer.DefaultRunConfig())
		if err != nil {
			cmd.Printf("Setup failed: %v\n", err)
			return
		}

		buckets, err := eng.MetricsReport(cmd.Context())
		if err != nil {
			cmd.Printf("Report failed: %v\n", err)
			return
		}
		if len(buckets) == 0 {
			cmd.Println("No metrics recorded yet")
			return
		}

		cmd.Printf("%-12s %-30s %8s %12s %10s %10s\n",
			"DATE", "STRATEGY", "CALLS", "AVG TIME", "AVG SKUS", "TOTAL SKUS")
		for _, b := range buckets {
			cmd.Printf("%-12s %-30s %8d %10.0fms %10.1f %10d\n",
				b.Date, b.Strategy, b.Calls, b.AvgTime, b.AvgSKUs, b.TotalSKUs)
		}
	},
}

var metricsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete metric buckets older than the retention window",
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("retention-days")

		eng, err := buildEngine(importer.DefaultRunConfig())
		if err != nil {
			cmd.Printf("Setup failed: %v\n", err)
			return
		}

		deleted, err := eng.PruneMetrics(cmd.Context(), days)
		if err != nil {
			cmd.Printf("Prune failed: %v\n", err)
			return
		}
		cmd.Printf("Deleted %d bucket(s)\n", deleted)
	},
}

func init() {
	metricsPruneCmd.Flags().Int("retention-days", 30, "Days of history to keep")

	metricsCmd.AddCommand(metricsReportCmd)
	metricsCmd.AddCommand(metricsPruneCmd)
	rootCmd.AddCommand(metricsCmd)
}
