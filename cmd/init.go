package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/transitdir/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize transitdir configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the route directory and generates a .transitdir.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
