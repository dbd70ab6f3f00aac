package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/config"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return err
		}

		// sections are optional at load time, validate them all here
		for name, err := range map[string]error{
			"workflow": cfg.Workflow.Validate(),
			"sso":      cfg.SSO.Validate(),
			"report":   cfg.Report.Validate(),
		} {
			if err != nil {
				log.Warn().Err(err).Msgf("Section %q is incomplete.", name)
			}
		}

		log.Info().Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
