package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "request.dispatched", "request.denied")
	Action string `json:"action"`

	// ExternalUserID is the messaging-service identity that clicked the button.
	ExternalUserID string `json:"external_user_id,omitempty"`

	// PrincipalID is the resolved SSO principal, if resolution succeeded.
	PrincipalID string `json:"principal_id,omitempty"`

	AccountID        string `json:"account_id,omitempty"`
	PermissionSetArn string `json:"permission_set_arn,omitempty"`

	// Granted indicates whether the request passed authorization.
	Granted bool   `json:"granted"`
	Error   string `json:"error,omitempty"`

	// Metadata contains extra details (e.g. the execution ARN).
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
