package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"stockplane/internal/fetch"
	"stockplane/internal/importer"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [site] [sku...]",
	Short: "Fetch stock counts for SKUs",
	Long: `Fetch preorder and shelf counts for the given SKUs. The mode picks the
strategy: fast_read returns cached values, force_recompute recalculates
first, auto lets the engine decide. When the requested strategy fails the
opposite one is tried and the result is flagged with a warning.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		site, skus := args[0], args[1:]
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := fetch.ParseMode(modeFlag)
		if err != nil {
			cmd.Printf("Fetch failed: %v\n", err)
			return
		}

		eng, err := buildEngine(importer.DefaultRunConfig())
		if err != nil {
			cmd.Printf("Setup failed: %v\n", err)
			return
		}

		res, err := eng.Fetch(cmd.Context(), site, skus, mode)
		if err != nil {
			cmd.Printf("Fetch failed: %v\n", err)
			return
		}

		if !res.OK() {
			cmd.Printf("❌ Fetch failed (%s): %s\n", res.Strategy, res.OriginalError)
			if res.FallbackError != "" {
				cmd.Printf("   fallback error: %s\n", res.FallbackError)
			}
			return
		}

		for _, warn := range res.Warnings {
			cmd.Printf("⚠️  %s\n", warn)
		}
		cmd.Printf("Strategy: %s (%s)\n", res.Strategy, res.Elapsed.Round(time.Millisecond))
		cmd.Printf("%-20s %10s %10s %s\n", "SKU", "PREORDER", "SHELF", "NOTE")
		for _, row := range res.Response.Results {
			note := ""
			if row.Skipped {
				note = "skipped: " + row.Reason
			}
			cmd.Printf("%-20s %10d %10d %s\n", row.SKU, row.PreorderCount, row.ShelfCount, note)
		}
	},
}

func init() {
	fetchCmd.Flags().String("mode", string(fetch.ModeAuto), "Fetch mode: fast_read, force_recompute or auto")

	rootCmd.AddCommand(fetchCmd)
}
