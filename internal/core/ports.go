package core

import (
	"context"
	"time"
)

// DataStorage is the principal-to-identity and authorization mapping store.
// Implementations: DynamoDB table, in-memory fake.
type DataStorage interface {
	// ResolvePrincipal maps a messaging-service identity (e.g. a Slack
	// user ID) to an SSO principal ID. It returns an empty string when no
	// mapping exists; an error only signals a store failure.
	ResolvePrincipal(ctx context.Context, external string) (string, error)

	// UserCanAccess reports whether the principal may use the permission
	// set against the account.
	UserCanAccess(ctx context.Context, accountID, permissionSetArn, principalID string) (bool, error)
}

// ParameterStore retrieves secrets by name.
type ParameterStore interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// UserLookup resolves an SSO principal ID to its username.
type UserLookup interface {
	UserIDToUserName(ctx context.Context, principalID string) (string, error)
}

// ExecutionHandle identifies a started workflow execution.
type ExecutionHandle struct {
	ExecutionArn string
	StartDate    time.Time
}

// WorkflowStarter triggers a durable workflow execution with a canonical
// JSON input. It is invoked at most once per handled webhook; duplicate
// webhook deliveries are not deduplicated here.
type WorkflowStarter interface {
	StartExecution(ctx context.Context, input []byte) (ExecutionHandle, error)
}

// ControlPlane is the external access-control plane that owns account
// assignments. Create and delete return immediately with either a terminal
// status or a request ID to poll.
type ControlPlane interface {
	CreateAssignment(ctx context.Context, op AssignmentOperation) (AssignmentStatus, error)
	DeleteAssignment(ctx context.Context, op AssignmentOperation) (AssignmentStatus, error)
	DescribeCreationStatus(ctx context.Context, requestID string) (AssignmentStatus, error)
	DescribeDeletionStatus(ctx context.Context, requestID string) (AssignmentStatus, error)
}
