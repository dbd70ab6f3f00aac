package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/core"
)

// revokeCmd represents the revoke workflow step. Older orchestrations named
// the fields "role" and "principal", so those are accepted as fallbacks.
var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Workflow step: remove the permission set from the principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")

		data, err := readEventInput(input)
		if err != nil {
			return err
		}

		var event core.BreakGlassEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}

		if event.PermissionSetArn == "" {
			if role, ok := event.Extra["role"].(string); ok {
				event.PermissionSetArn = role
			}
		}
		if event.PrincipalID == "" {
			if principal, ok := event.Extra["principal"].(string); ok {
				event.PrincipalID = principal
			}
		}

		if event.AccountID == "" {
			return fmt.Errorf("invalid event: accountId is required")
		}
		if event.PermissionSetArn == "" {
			return fmt.Errorf("invalid event: permissionSetArn (or role) is required")
		}
		if event.PrincipalID == "" {
			return fmt.Errorf("invalid event: principalId (or principal) is required")
		}

		return applyAssignment(cmd, core.KindRevoke, event)
	},
}

func init() {
	rootCmd.AddCommand(revokeCmd)

	revokeCmd.Flags().StringP("input", "i", "-", "Event JSON file ('-' for stdin)")
}
