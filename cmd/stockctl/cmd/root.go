package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "stockctl drives WP All Import jobs and stock fetches from the terminal",
	Long: `stockctl is the command-line interface for the stockplane engine.

It triggers WP All Import batch jobs on configured WordPress sites, polls
them to completion, and fetches WooCommerce stock data with automatic
fallback between the cached fast read and a targeted recalculation.

Everything runs in-process against the sites file; no daemon is needed.

Common workflows:

  Run the stock import on a site and wait for it to finish:
    stockctl import yoyaku.io stock

  Fetch stock for a few SKUs:
    stockctl fetch yoyaku.io SKU-001 SKU-002

  Force a recalculation before reading:
    stockctl fetch yoyaku.io SKU-001 --mode force_recompute

  Inspect per-strategy performance history:
    stockctl metrics report

Configuration:
  STOCKPLANE_SITES          Path to the sites YAML file (default: sites.yaml)
  STOCKPLANE_METRICS_FILE   Path of the JSON metrics store`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".stockctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".stockctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "STOCKPLANE_VARNAME"
	viper.SetEnvPrefix("STOCKPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stockctl.yaml)")

	rootCmd.PersistentFlags().String("sites", "sites.yaml", "Path to the sites YAML file")
	viper.BindPFlag("sites", rootCmd.PersistentFlags().Lookup("sites"))

	rootCmd.PersistentFlags().String("metrics-file", "stockplane-metrics.json", "Path of the JSON metrics store")
	viper.BindPFlag("metrics-file", rootCmd.PersistentFlags().Lookup("metrics-file"))

	rootCmd.PersistentFlags().Float64("remote-rate", 2.0, "Outbound requests per second towards the remote sites")
	viper.BindPFlag("remote-rate", rootCmd.PersistentFlags().Lookup("remote-rate"))

	rootCmd.PersistentFlags().Int("request-retries", 3, "HTTP attempts per remote call")
	viper.BindPFlag("request-retries", rootCmd.PersistentFlags().Lookup("request-retries"))

	rootCmd.PersistentFlags().Duration("retry-backoff", 5*time.Second, "Base backoff between HTTP retries")
	viper.BindPFlag("retry-backoff", rootCmd.PersistentFlags().Lookup("retry-backoff"))
}
