// Package identity resolves SSO principal IDs to usernames via the AWS
// Identity Store.
package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"

	"github.com/jSherz/break-glass-access/internal/core"
)

type identityStoreAPI interface {
	DescribeUser(ctx context.Context, params *identitystore.DescribeUserInput, optFns ...func(*identitystore.Options)) (*identitystore.DescribeUserOutput, error)
}

var _ core.UserLookup = (*SSOUserLookup)(nil)

type SSOUserLookup struct {
	client          identityStoreAPI
	identityStoreID string
}

func NewSSOUserLookup(client identityStoreAPI, identityStoreID string) *SSOUserLookup {
	return &SSOUserLookup{
		client:          client,
		identityStoreID: identityStoreID,
	}
}

func (l *SSOUserLookup) UserIDToUserName(ctx context.Context, principalID string) (string, error) {
	user, err := l.client.DescribeUser(ctx, &identitystore.DescribeUserInput{
		IdentityStoreId: aws.String(l.identityStoreID),
		UserId:          aws.String(principalID),
	})
	if err != nil {
		return "", fmt.Errorf("describing user %q: %w", principalID, err)
	}
	if user.UserName == nil {
		return "", fmt.Errorf("user %q has no username", principalID)
	}
	return *user.UserName, nil
}
