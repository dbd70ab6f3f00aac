package storage

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/jSherz/break-glass-access/internal/config"
	"github.com/jSherz/break-glass-access/internal/core"
)

// DynamoStorageConfig is the backend-specific part of a "dynamodb" storage
// config block.
type DynamoStorageConfig struct {
	TableName string `mapstructure:"table_name"`
}

// NewDynamoDataStorageFromConfig decodes the free-form storage config into
// the DynamoDB-specific shape and builds the store.
func NewDynamoDataStorageFromConfig(cfg config.StorageConfig, client dynamoAPI) (*DynamoDataStorage, error) {
	var conf DynamoStorageConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &conf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for dynamodb storage: %w", err)
	}
	if err := decoder.Decode(cfg.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config for dynamodb storage: %w", err)
	}

	if conf.TableName == "" {
		return nil, fmt.Errorf("dynamodb storage missing 'table_name'")
	}
	return NewDynamoDataStorage(conf.TableName, client), nil
}

// Build constructs the mapping store selected by the config. The DynamoDB
// client is only used for the "dynamodb" type; pass nil for "memory".
func Build(cfg config.StorageConfig, client dynamoAPI) (core.DataStorage, error) {
	switch cfg.Type {
	case "", "dynamodb":
		return NewDynamoDataStorageFromConfig(cfg, client)
	case "memory":
		return NewInMemoryDataStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
