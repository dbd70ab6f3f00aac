package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with the service configuration",
}

func init() {
	rootCmd.AddCommand(configCmd)
}
