package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/pkg/client"
)

// simulateCmd fabricates a signed button click against a running server.
// Useful for smoke-testing a deployment without involving Slack.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Send a fabricated, signed button click to a break-glass server",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		secret, _ := cmd.Flags().GetString("signing-secret")
		userID, _ := cmd.Flags().GetString("user-id")
		userName, _ := cmd.Flags().GetString("user-name")
		accountID, _ := cmd.Flags().GetString("account-id")
		permissionSetArn, _ := cmd.Flags().GetString("permission-set-arn")

		if server == "" {
			return fmt.Errorf("server address not configured (use --server)")
		}
		if secret == "" {
			return fmt.Errorf("signing secret not configured (use --signing-secret)")
		}

		cli := client.New(server)
		message, status, err := cli.SimulateButtonClick(cmd.Context(), client.SimulateOptions{
			UserID:           userID,
			UserName:         userName,
			AccountID:        accountID,
			PermissionSetArn: permissionSetArn,
			SigningSecret:    secret,
		})
		if err != nil {
			return err
		}

		if message == nil {
			log.Warn().Msgf("%s server answered %d with a non-JSON body", redCross, status)
			return nil
		}

		log.Info().Msgf("server answered %d", status)
		fmt.Println(bold("\n── Server Response ──"))
		fmt.Printf("  %s: %s\n", faint("Type"), message.ResponseType)
		fmt.Printf("  %s: %s\n", faint("Text"), message.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("server", "http://localhost:8080", "Address of the break-glass server")
	simulateCmd.Flags().String("signing-secret", "", "Slack signing secret the server verifies with")
	simulateCmd.Flags().String("user-id", "U12345678", "Slack user ID to simulate")
	simulateCmd.Flags().String("user-name", "simulated.user", "Slack user name to simulate")
	simulateCmd.Flags().String("account-id", "123456789012", "Target account ID")
	simulateCmd.Flags().String("permission-set-arn", "arn:aws:sso:::permissionSet/ssoins-123/ps-123", "Permission set to request")
}
