// Package storage implements the principal and authorization mapping store.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jSherz/break-glass-access/internal/core"
)

// Key scheme within the single table:
//
//	principal#<external id>                         -> ssoPrincipal attribute
//	access#<account>#<permission set>#<principal>   -> presence = allowed
const (
	principalKeyPrefix = "principal#"
	accessKeyPrefix    = "access#"
)

type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ core.DataStorage = (*DynamoDataStorage)(nil)

// DynamoDataStorage reads principal mappings and access grants from a
// single DynamoDB table.
type DynamoDataStorage struct {
	tableName string
	client    dynamoAPI
}

func NewDynamoDataStorage(tableName string, client dynamoAPI) *DynamoDataStorage {
	return &DynamoDataStorage{
		tableName: tableName,
		client:    client,
	}
}

func accessKey(accountID, permissionSetArn, principalID string) string {
	return accessKeyPrefix + accountID + "#" + permissionSetArn + "#" + principalID
}

func (s *DynamoDataStorage) ResolvePrincipal(ctx context.Context, external string) (string, error) {
	item, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: principalKeyPrefix + external},
		},
	})
	if err != nil {
		return "", fmt.Errorf("looking up principal mapping: %w", err)
	}
	if item.Item == nil {
		return "", nil
	}

	principal, ok := item.Item["ssoPrincipal"].(*types.AttributeValueMemberS)
	if !ok {
		return "", nil
	}
	return principal.Value, nil
}

func (s *DynamoDataStorage) UserCanAccess(ctx context.Context, accountID, permissionSetArn, principalID string) (bool, error) {
	item, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: accessKey(accountID, permissionSetArn, principalID)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("looking up access grant: %w", err)
	}
	return item.Item != nil, nil
}

// DefinePrincipal stores or replaces a messaging-service to SSO principal
// mapping. Used by the admin CLI.
func (s *DynamoDataStorage) DefinePrincipal(ctx context.Context, external, principalID string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"id":           &types.AttributeValueMemberS{Value: principalKeyPrefix + external},
			"ssoPrincipal": &types.AttributeValueMemberS{Value: principalID},
		},
	})
	if err != nil {
		return fmt.Errorf("storing principal mapping: %w", err)
	}
	return nil
}

// DefineUserAccess stores an access grant. Used by the admin CLI.
func (s *DynamoDataStorage) DefineUserAccess(ctx context.Context, accountID, permissionSetArn, principalID string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: accessKey(accountID, permissionSetArn, principalID)},
		},
	})
	if err != nil {
		return fmt.Errorf("storing access grant: %w", err)
	}
	return nil
}

// Mapping is one row of the table, split back into its components.
type Mapping struct {
	Kind             string // "principal" or "access"
	External         string
	PrincipalID      string
	AccountID        string
	PermissionSetArn string
}

// ListMappings scans the full table. Intended for the admin CLI only; the
// request pipeline never scans.
func (s *DynamoDataStorage) ListMappings(ctx context.Context) ([]Mapping, error) {
	var mappings []Mapping
	var startKey map[string]types.AttributeValue

	for {
		page, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning mappings table: %w", err)
		}

		for _, item := range page.Items {
			id, ok := item["id"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			mapping, ok := parseMapping(id.Value, item)
			if ok {
				mappings = append(mappings, mapping)
			}
		}

		if page.LastEvaluatedKey == nil {
			return mappings, nil
		}
		startKey = page.LastEvaluatedKey
	}
}

func parseMapping(id string, item map[string]types.AttributeValue) (Mapping, bool) {
	switch {
	case strings.HasPrefix(id, principalKeyPrefix):
		mapping := Mapping{
			Kind:     "principal",
			External: strings.TrimPrefix(id, principalKeyPrefix),
		}
		if principal, ok := item["ssoPrincipal"].(*types.AttributeValueMemberS); ok {
			mapping.PrincipalID = principal.Value
		}
		return mapping, true
	case strings.HasPrefix(id, accessKeyPrefix):
		parts := strings.SplitN(strings.TrimPrefix(id, accessKeyPrefix), "#", 3)
		if len(parts) != 3 {
			return Mapping{}, false
		}
		return Mapping{
			Kind:             "access",
			AccountID:        parts[0],
			PermissionSetArn: parts[1],
			PrincipalID:      parts[2],
		}, true
	default:
		return Mapping{}, false
	}
}
