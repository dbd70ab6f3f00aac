// Package assignment creates and deletes SSO account assignments and polls
// them to completion.
package assignment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"

	"github.com/jSherz/break-glass-access/internal/core"
)

type ssoAdminAPI interface {
	CreateAccountAssignment(ctx context.Context, params *ssoadmin.CreateAccountAssignmentInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.CreateAccountAssignmentOutput, error)
	DeleteAccountAssignment(ctx context.Context, params *ssoadmin.DeleteAccountAssignmentInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DeleteAccountAssignmentOutput, error)
	DescribeAccountAssignmentCreationStatus(ctx context.Context, params *ssoadmin.DescribeAccountAssignmentCreationStatusInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DescribeAccountAssignmentCreationStatusOutput, error)
	DescribeAccountAssignmentDeletionStatus(ctx context.Context, params *ssoadmin.DescribeAccountAssignmentDeletionStatusInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DescribeAccountAssignmentDeletionStatusOutput, error)
}

var _ core.ControlPlane = (*SSOControlPlane)(nil)

// SSOControlPlane adapts the SSO Admin account-assignment API to the
// ControlPlane port.
type SSOControlPlane struct {
	client      ssoAdminAPI
	instanceArn string
}

func NewSSOControlPlane(client ssoAdminAPI, instanceArn string) *SSOControlPlane {
	return &SSOControlPlane{
		client:      client,
		instanceArn: instanceArn,
	}
}

func (p *SSOControlPlane) CreateAssignment(ctx context.Context, op core.AssignmentOperation) (core.AssignmentStatus, error) {
	result, err := p.client.CreateAccountAssignment(ctx, &ssoadmin.CreateAccountAssignmentInput{
		InstanceArn:      aws.String(p.instanceArn),
		PermissionSetArn: aws.String(op.PermissionSetArn),
		PrincipalId:      aws.String(op.PrincipalID),
		PrincipalType:    types.PrincipalTypeUser,
		TargetId:         aws.String(op.TargetAccountID),
		TargetType:       types.TargetTypeAwsAccount,
	})
	if err != nil {
		return core.AssignmentStatus{}, fmt.Errorf("creating account assignment: %w", err)
	}
	return fromOperationStatus(result.AccountAssignmentCreationStatus), nil
}

func (p *SSOControlPlane) DeleteAssignment(ctx context.Context, op core.AssignmentOperation) (core.AssignmentStatus, error) {
	result, err := p.client.DeleteAccountAssignment(ctx, &ssoadmin.DeleteAccountAssignmentInput{
		InstanceArn:      aws.String(p.instanceArn),
		PermissionSetArn: aws.String(op.PermissionSetArn),
		PrincipalId:      aws.String(op.PrincipalID),
		PrincipalType:    types.PrincipalTypeUser,
		TargetId:         aws.String(op.TargetAccountID),
		TargetType:       types.TargetTypeAwsAccount,
	})
	if err != nil {
		return core.AssignmentStatus{}, fmt.Errorf("deleting account assignment: %w", err)
	}
	return fromOperationStatus(result.AccountAssignmentDeletionStatus), nil
}

func (p *SSOControlPlane) DescribeCreationStatus(ctx context.Context, requestID string) (core.AssignmentStatus, error) {
	result, err := p.client.DescribeAccountAssignmentCreationStatus(ctx, &ssoadmin.DescribeAccountAssignmentCreationStatusInput{
		InstanceArn:                        aws.String(p.instanceArn),
		AccountAssignmentCreationRequestId: aws.String(requestID),
	})
	if err != nil {
		return core.AssignmentStatus{}, fmt.Errorf("describing assignment creation %q: %w", requestID, err)
	}
	return fromOperationStatus(result.AccountAssignmentCreationStatus), nil
}

func (p *SSOControlPlane) DescribeDeletionStatus(ctx context.Context, requestID string) (core.AssignmentStatus, error) {
	result, err := p.client.DescribeAccountAssignmentDeletionStatus(ctx, &ssoadmin.DescribeAccountAssignmentDeletionStatusInput{
		InstanceArn:                        aws.String(p.instanceArn),
		AccountAssignmentDeletionRequestId: aws.String(requestID),
	})
	if err != nil {
		return core.AssignmentStatus{}, fmt.Errorf("describing assignment deletion %q: %w", requestID, err)
	}
	return fromOperationStatus(result.AccountAssignmentDeletionStatus), nil
}

// fromOperationStatus maps the SSO Admin operation status onto the port's
// three-state model. Any status the SDK reports that is neither SUCCEEDED
// nor FAILED (including values this build does not know about) is treated
// as still pending.
func fromOperationStatus(status *types.AccountAssignmentOperationStatus) core.AssignmentStatus {
	if status == nil {
		return core.AssignmentStatus{Status: core.StatusPending}
	}

	out := core.AssignmentStatus{
		RequestID: aws.ToString(status.RequestId),
	}

	switch status.Status {
	case types.StatusValuesSucceeded:
		out.Status = core.StatusSucceeded
	case types.StatusValuesFailed:
		out.Status = core.StatusFailed
		// Hand the caller the control plane's own payload, not a summary.
		if diagnostic, err := json.Marshal(status); err == nil {
			out.Diagnostic = string(diagnostic)
		} else {
			out.Diagnostic = aws.ToString(status.FailureReason)
		}
	default:
		out.Status = core.StatusPending
	}
	return out
}
