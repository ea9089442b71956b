package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"stockplane/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [site] [kind]",
	Short: "Run a WP All Import job to completion",
	Long: `Trigger the given import kind (new, preorder, stock, picking, export,
delete, release_date) on a site and poll until the remote job reaches a
terminal state. The command blocks for the whole run.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		site, kind := args[0], args[1]

		runCfg := importer.DefaultRunConfig()
		if d, _ := cmd.Flags().GetDuration("poll-interval"); d > 0 {
			runCfg.PollInterval = d
		}
		if d, _ := cmd.Flags().GetDuration("initial-delay"); d >= 0 {
			runCfg.InitialDelay = d
		}
		if n, _ := cmd.Flags().GetInt("max-poll-attempts"); n > 0 {
			runCfg.MaxPollAttempts = n
		}
		if d, _ := cmd.Flags().GetDuration("budget"); d > 0 {
			runCfg.BudgetMargin = d
		}

		eng, err := buildEngine(runCfg)
		if err != nil {
			cmd.Printf("Setup failed: %v\n", err)
			return
		}

		cmd.Printf("Running %s import on %s...\n", kind, site)
		out, err := eng.RunImport(cmd.Context(), site, kind)
		if err != nil {
			cmd.Printf("Import failed: %v\n", err)
			return
		}

		if out.Completed() {
			cmd.Printf("✅ Import completed in %s (%d trigger attempts, %d polls)\n",
				out.Elapsed.Round(time.Second), out.TriggerAttempts, out.PollAttempts)
			return
		}
		cmd.Printf("❌ Import %s: %s\n", out.State, out.Reason)
	},
}

func init() {
	importCmd.Flags().Duration("poll-interval", 0, "Override the poll interval")
	importCmd.Flags().Duration("initial-delay", -1, "Override the delay before the first poll")
	importCmd.Flags().Int("max-poll-attempts", 0, "Override the poll attempt ceiling")
	importCmd.Flags().Duration("budget", 0, "Override the overall execution budget")

	rootCmd.AddCommand(importCmd)
}
