package assignment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jSherz/break-glass-access/internal/core"
)

// fakePlane scripts the control plane's responses: the first element
// answers the submit call, the rest answer successive polls.
type fakePlane struct {
	submitStatus core.AssignmentStatus
	pollStatuses []core.AssignmentStatus

	submitKind  core.OperationKind
	submitCalls int
	createPolls int
	deletePolls int
}

func (f *fakePlane) CreateAssignment(_ context.Context, _ core.AssignmentOperation) (core.AssignmentStatus, error) {
	f.submitKind = core.KindGrant
	f.submitCalls++
	return f.submitStatus, nil
}

func (f *fakePlane) DeleteAssignment(_ context.Context, _ core.AssignmentOperation) (core.AssignmentStatus, error) {
	f.submitKind = core.KindRevoke
	f.submitCalls++
	return f.submitStatus, nil
}

func (f *fakePlane) next() core.AssignmentStatus {
	if len(f.pollStatuses) == 0 {
		return core.AssignmentStatus{Status: core.StatusPending}
	}
	status := f.pollStatuses[0]
	f.pollStatuses = f.pollStatuses[1:]
	return status
}

func (f *fakePlane) DescribeCreationStatus(_ context.Context, _ string) (core.AssignmentStatus, error) {
	f.createPolls++
	return f.next(), nil
}

func (f *fakePlane) DescribeDeletionStatus(_ context.Context, _ string) (core.AssignmentStatus, error) {
	f.deletePolls++
	return f.next(), nil
}

func grantOp() core.AssignmentOperation {
	return core.AssignmentOperation{
		Kind:             core.KindGrant,
		TargetAccountID:  "123456789012",
		PermissionSetArn: "arn:aws:sso:::permissionSet/ps-1",
		PrincipalID:      "sso-principal-1",
	}
}

func TestOperator_FastPath(t *testing.T) {
	plane := &fakePlane{
		submitStatus: core.AssignmentStatus{Status: core.StatusSucceeded},
	}
	operator := NewOperator(plane, time.Millisecond)

	if err := operator.Apply(context.Background(), grantOp()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if plane.createPolls != 0 || plane.deletePolls != 0 {
		t.Errorf("fast path issued %d/%d status polls, want none",
			plane.createPolls, plane.deletePolls)
	}
}

func TestOperator_PollsUntilSucceeded(t *testing.T) {
	plane := &fakePlane{
		submitStatus: core.AssignmentStatus{Status: core.StatusPending, RequestID: "req-1"},
		pollStatuses: []core.AssignmentStatus{
			{Status: core.StatusPending, RequestID: "req-1"},
			{Status: core.StatusPending, RequestID: "req-1"},
			{Status: core.StatusSucceeded, RequestID: "req-1"},
		},
	}
	operator := NewOperator(plane, time.Millisecond)

	if err := operator.Apply(context.Background(), grantOp()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if plane.createPolls != 3 {
		t.Errorf("Apply() issued %d polls, want 3", plane.createPolls)
	}
}

func TestOperator_FailureCarriesDiagnostic(t *testing.T) {
	const diagnostic = `{"Status":"FAILED","FailureReason":"principal not found"}`
	plane := &fakePlane{
		submitStatus: core.AssignmentStatus{Status: core.StatusPending, RequestID: "req-1"},
		pollStatuses: []core.AssignmentStatus{
			{Status: core.StatusFailed, Diagnostic: diagnostic},
		},
	}
	operator := NewOperator(plane, time.Millisecond)

	err := operator.Apply(context.Background(), grantOp())
	if err == nil {
		t.Fatal("Apply() expected error for FAILED operation")
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Apply() error = %T, want *OperationError", err)
	}
	if opErr.Diagnostic != diagnostic {
		t.Errorf("diagnostic = %s, want the control plane payload verbatim", opErr.Diagnostic)
	}
	if !strings.Contains(err.Error(), "principal not found") {
		t.Errorf("error text %q does not include the diagnostic", err.Error())
	}
	if plane.createPolls < 1 {
		t.Error("Apply() returned failure without issuing a status poll")
	}
}

func TestOperator_ImmediateFailure(t *testing.T) {
	plane := &fakePlane{
		submitStatus: core.AssignmentStatus{Status: core.StatusFailed, Diagnostic: "quota exceeded"},
	}
	operator := NewOperator(plane, time.Millisecond)

	var opErr *OperationError
	if err := operator.Apply(context.Background(), grantOp()); !errors.As(err, &opErr) {
		t.Fatalf("Apply() error = %v, want *OperationError", err)
	}
	if plane.createPolls != 0 {
		t.Errorf("immediate failure issued %d polls, want none", plane.createPolls)
	}
}

func TestOperator_RevokePollsDeletionStatus(t *testing.T) {
	plane := &fakePlane{
		submitStatus: core.AssignmentStatus{Status: core.StatusPending, RequestID: "req-2"},
		pollStatuses: []core.AssignmentStatus{
			{Status: core.StatusSucceeded},
		},
	}
	operator := NewOperator(plane, time.Millisecond)

	op := grantOp()
	op.Kind = core.KindRevoke
	if err := operator.Apply(context.Background(), op); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if plane.submitKind != core.KindRevoke {
		t.Error("Apply() submitted a create for a revoke operation")
	}
	if plane.deletePolls != 1 || plane.createPolls != 0 {
		t.Errorf("revoke polled create=%d delete=%d, want delete only",
			plane.createPolls, plane.deletePolls)
	}
}

func TestOperator_ContextCancelsPolling(t *testing.T) {
	plane := &fakePlane{
		submitStatus: core.AssignmentStatus{Status: core.StatusPending, RequestID: "req-3"},
		// No terminal status scripted: the loop would spin forever.
	}
	operator := NewOperator(plane, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := operator.Apply(ctx, grantOp())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Apply() error = %v, want context.DeadlineExceeded", err)
	}
}
