package core

// OperationKind selects whether an assignment is created or deleted.
type OperationKind string

const (
	KindGrant  OperationKind = "GRANT"
	KindRevoke OperationKind = "REVOKE"
)

// OperationStatus is the lifecycle state of an assignment operation on the
// external control plane. PENDING transitions exactly once to SUCCEEDED or
// FAILED and never reverts.
type OperationStatus string

const (
	StatusPending   OperationStatus = "PENDING"
	StatusSucceeded OperationStatus = "SUCCEEDED"
	StatusFailed    OperationStatus = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s OperationStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// AssignmentOperation describes one grant or revoke of a permission set
// against a target account. It is owned by the operator for the duration of
// a single Apply call; durable state lives in the control plane.
type AssignmentOperation struct {
	Kind             OperationKind
	TargetAccountID  string
	PermissionSetArn string
	PrincipalID      string
}

// AssignmentStatus is a control-plane response for an in-flight or completed
// assignment operation.
type AssignmentStatus struct {
	Status OperationStatus

	// RequestID identifies the in-flight operation for status polling.
	// Only meaningful while Status is non-terminal.
	RequestID string

	// Diagnostic is the control plane's failure payload, serialized
	// verbatim. Populated on FAILED.
	Diagnostic string
}
