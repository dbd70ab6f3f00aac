package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/buildinfo"
	"github.com/jSherz/break-glass-access/pkg/client"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the break-glass installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		if server == "" {
			log.Info().Msg("Showing local build info...")
			info := buildinfo.GetBuildInfo()
			printInfo(&info)
			return nil
		}

		log.Info().Msg("Fetching build info from server...")
		info, err := client.New(server).Info(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get info from server: %w", err)
		}
		printInfo(info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().String("server", "", "Address of a remote break-glass server")
}

func printInfo(info *buildinfo.Info) {
	fmt.Println(bold("\n── Break-Glass Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
}
