package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/transitdir/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "transitdir",
	Short: "Searchable public-transit route directory with an offline cache",
	Long: `Transitdir serves a searchable, filterable directory of a city's
public-transit routes. Its offline cache precaches the site shell and keeps
a network-first copy of every page, so the directory stays usable without
a connection.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
