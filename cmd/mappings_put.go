package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var mappingsPutPrincipalCmd = &cobra.Command{
	Use:   "put-principal <slack-user-id> <sso-principal-id>",
	Short: "Map a Slack user to an SSO principal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := buildAdminStore(cmd)
		if err != nil {
			return err
		}
		if err := store.DefinePrincipal(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		log.Info().Msgf("%s mapped %s to principal %s", greenCheck, bold(args[0]), args[1])
		return nil
	},
}

var mappingsPutAccessCmd = &cobra.Command{
	Use:   "put-access <account-id> <permission-set-arn> <sso-principal-id>",
	Short: "Allow a principal to break glass into an account with a permission set",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := buildAdminStore(cmd)
		if err != nil {
			return err
		}
		if err := store.DefineUserAccess(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return err
		}
		log.Info().Msgf("%s granted %s access to account %s", greenCheck, args[2], bold(args[0]))
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsPutPrincipalCmd)
	mappingsCmd.AddCommand(mappingsPutAccessCmd)
}
