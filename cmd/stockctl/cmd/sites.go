package cmd

import (
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stockplane/internal/sites"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List configured sites and their import kinds",
	Run: func(cmd *cobra.Command, args []string) {
		provider, err := sites.Load(viper.GetString("sites"))
		if err != nil {
			cmd.Printf("Failed to load sites: %v\n", err)
			return
		}

		for _, name := range provider.Names() {
			site, _ := provider.Lookup(name)
			kinds := make([]string, 0, len(site.Imports))
			for k := range site.Imports {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			cmd.Printf("%s\n", name)
			for _, k := range kinds {
				cmd.Printf("  import %-14s id %s\n", k, site.Imports[k])
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
