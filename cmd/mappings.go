package cmd

import (
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/config"
	"github.com/jSherz/break-glass-access/internal/storage"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage principal and access mappings",
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
}

func buildAdminStore(cmd *cobra.Command) (*storage.DynamoDataStorage, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Storage.Type != "" && cfg.Storage.Type != "dynamodb" {
		return nil, fmt.Errorf("mappings administration requires dynamodb storage, got %q", cfg.Storage.Type)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return storage.NewDynamoDataStorageFromConfig(cfg.Storage, dynamodb.NewFromConfig(awsCfg))
}
