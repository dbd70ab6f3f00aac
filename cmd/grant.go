package cmd

import (
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/assignment"
	"github.com/jSherz/break-glass-access/internal/config"
	"github.com/jSherz/break-glass-access/internal/core"
)

// grantCmd represents the grant workflow step. The orchestrator invokes it
// with the break-glass event as input and retries on failure.
var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Workflow step: assign the permission set to the principal",
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
		if err := event.Validate(); err != nil {
			return fmt.Errorf("invalid event: %w", err)
		}

		return applyAssignment(cmd, core.KindGrant, event)
	},
}

func init() {
	rootCmd.AddCommand(grantCmd)

	grantCmd.Flags().StringP("input", "i", "-", "Event JSON file ('-' for stdin)")
}

// applyAssignment runs one grant or revoke operation to a terminal status.
func applyAssignment(cmd *cobra.Command, kind core.OperationKind, event core.BreakGlassEvent) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.SSO.Validate(); err != nil {
		return fmt.Errorf("validating sso config: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	operator := assignment.NewOperator(
		assignment.NewSSOControlPlane(ssoadmin.NewFromConfig(awsCfg), cfg.SSO.InstanceArn),
		cfg.SSO.PollInterval,
	)

	err = operator.Apply(cmd.Context(), core.AssignmentOperation{
		Kind:             kind,
		TargetAccountID:  event.AccountID,
		PermissionSetArn: event.PermissionSetArn,
		PrincipalID:      event.PrincipalID,
	})
	if err != nil {
		log.Error().Msgf("%s %s failed for account %s", redCross, kind, event.AccountID)
		return err
	}

	log.Info().Msgf("%s %s completed for account %s", greenCheck, kind, event.AccountID)
	return nil
}
