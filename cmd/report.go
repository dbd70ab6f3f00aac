package cmd

import (
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/config"
	"github.com/jSherz/break-glass-access/internal/core"
	"github.com/jSherz/break-glass-access/internal/report"
)

// reportCmd represents the report workflow step. It runs after the revoke
// step and mails a summary of what the user did during the access window.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Workflow step: email a report of activity during the access window",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")

		data, err := readEventInput(input)
		if err != nil {
			return err
		}

		var event core.ReportEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.SSO.Validate(); err != nil {
			return fmt.Errorf("validating sso config: %w", err)
		}
		if err := cfg.Report.Validate(); err != nil {
			return fmt.Errorf("validating report config: %w", err)
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}

		reporter := report.NewReporter(
			cloudwatchlogs.NewFromConfig(awsCfg),
			cfg.Report.CloudTrailLogGroup,
			ssoadmin.NewFromConfig(awsCfg),
			cfg.SSO.InstanceArn,
			ses.NewFromConfig(awsCfg),
			cfg.Report.ContactEmail,
			cfg.Report.FromEmail,
		).WithPollInterval(cfg.Report.PollInterval)

		if err := reporter.Report(cmd.Context(), event); err != nil {
			log.Error().Msgf("%s report failed for %s", redCross, event.PrincipalUsername)
			return err
		}

		log.Info().Msgf("%s report sent to %s", greenCheck, cfg.Report.ContactEmail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("input", "i", "-", "Event JSON file ('-' for stdin)")
}
